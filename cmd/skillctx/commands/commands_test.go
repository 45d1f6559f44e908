package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/skillctx/internal/errors"
)

func init() {
	color.NoColor = true
}

// writeCorpus creates a small corpus and a config file pointing at it.
func writeCorpus(t *testing.T, files map[string]string) (configFile, corpusDir string) {
	t.Helper()
	root := t.TempDir()
	corpusDir = filepath.Join(root, "rules")
	for rel, content := range files {
		path := filepath.Join(corpusDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	configFile = filepath.Join(root, "config.yaml")
	cfg := "version: 1\ncorpus_dirs:\n  - rules\nbudget: 500\n"
	require.NoError(t, os.WriteFile(configFile, []byte(cfg), 0o600))
	return configFile, corpusDir
}

func defaultCorpus(t *testing.T) string {
	t.Helper()
	cfg, _ := writeCorpus(t, map[string]string{
		"a.md": "---\nname: A\npriority: critical\nglobs: ['**/*.tsx']\nkeywords: [scroll]\ntokens: 100\n---\nBody A.\n",
		"b.md": "---\nname: B\npriority: critical\nglobs: ['**/*.tsx']\nkeywords: [scroll]\ntokens: 100\n---\nBody B.\n",
		"c.md": "---\nname: C\npriority: low\nkeywords: [animation]\ntokens: 50\nsummary: Short C.\nsummary_tokens: 20\n---\nBody C.\n",
	})
	return cfg
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, configFile string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	resetFlags(rootCmd)
	loadedConfig = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", configFile, "-q"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSelect_JSON(t *testing.T) {
	cfg := defaultCorpus(t)
	out, err := execute(t, cfg, "select", "--file", "app/foo.tsx", "--text", "smooth scroll animation", "--budget", "150", "--format", "json")
	require.NoError(t, err)

	var view selectionView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Inclusions, 1)
	assert.Equal(t, "A", view.Inclusions[0].ID)
	assert.Equal(t, "full", view.Inclusions[0].Form)
	assert.Equal(t, 100, view.TokensUsed)
	assert.Equal(t, 150, view.Budget)
	assert.Equal(t, 2, view.Discarded)
}

func TestSelect_SummaryFallbackText(t *testing.T) {
	cfg := defaultCorpus(t)
	out, err := execute(t, cfg, "select", "--text", "animation", "--budget", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "C")
	assert.Contains(t, out, "summary")
	assert.Contains(t, out, "20/30 tokens used, 0 discarded")
}

func TestSelect_BudgetFromConfig(t *testing.T) {
	cfg := defaultCorpus(t)
	out, err := execute(t, cfg, "select", "--file", "x.tsx", "--format", "yaml")
	require.NoError(t, err)

	var view selectionView
	require.NoError(t, yaml.Unmarshal([]byte(out), &view))
	assert.Equal(t, 500, view.Budget)
	assert.Len(t, view.Inclusions, 2)
}

func TestSelect_TOML(t *testing.T) {
	cfg := defaultCorpus(t)
	out, err := execute(t, cfg, "select", "--file", "x.tsx", "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "budget = 500")
	assert.Contains(t, out, "[[inclusions]]")
}

func TestSelect_InvalidInput(t *testing.T) {
	cfg := defaultCorpus(t)
	tests := []struct {
		name string
		args []string
	}{
		{"zero budget", []string{"select", "--file", "x.tsx", "--budget", "0"}},
		{"no inputs", []string{"select"}},
		{"bad format", []string{"select", "--file", "x.tsx", "--format", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, cfg, tt.args...)
			require.Error(t, err)
			assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
		})
	}
}

func TestRender(t *testing.T) {
	cfg := defaultCorpus(t)
	out, err := execute(t, cfg, "render", "-f", "app/foo.tsx", "-b", "150")
	require.NoError(t, err)
	assert.Equal(t, "## A [CRITICAL]\n\nBody A.\n", out)
}

func TestRender_OutputFile(t *testing.T) {
	cfg := defaultCorpus(t)
	dest := filepath.Join(t.TempDir(), "context.md")
	out, err := execute(t, cfg, "render", "-t", "animation", "-b", "30", "-o", dest)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "## C [LOW] (summary)\n\nShort C.\n", string(data))
}

func TestList(t *testing.T) {
	cfg := defaultCorpus(t)
	out, err := execute(t, cfg, "list")
	require.NoError(t, err)
	for _, want := range []string{"ID", "A", "B", "C", "CRITICAL", "LOW", "3 document(s)"} {
		assert.Contains(t, out, want)
	}

	out, err = execute(t, cfg, "list", "--tier", "low", "--format", "json")
	require.NoError(t, err)
	var view documentListView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Documents, 1)
	assert.Equal(t, "C", view.Documents[0].ID)
	assert.Equal(t, 20, view.Documents[0].SummaryCost)
}

func TestShow(t *testing.T) {
	cfg := defaultCorpus(t)

	out, err := execute(t, cfg, "show", "C")
	require.NoError(t, err)
	assert.Contains(t, out, "ID:       C")
	assert.Contains(t, out, "Summary:  Short C. (20 tokens)")
	assert.Contains(t, out, "Body C.")

	out, err = execute(t, cfg, "show", "A", "--format", "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "---\nname: A\n"), out)
	assert.Contains(t, out, "priority: CRITICAL")
	assert.Contains(t, out, "\nBody A.\n")
}

func TestShow_NotFound(t *testing.T) {
	cfg := defaultCorpus(t)
	_, err := execute(t, cfg, "show", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestValidate(t *testing.T) {
	cfg, dir := writeCorpus(t, map[string]string{
		"good.md":   "---\nname: good\nkeywords: x\n---\n```go\nfmt.Println()\n```\n",
		"broken.md": "no frontmatter at all",
	})

	out, err := execute(t, cfg, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.Contains(t, out, "broken.md")
	assert.Contains(t, out, "missing frontmatter")
	assert.Contains(t, out, "2 file(s) checked")
}

func TestValidate_CleanJSON(t *testing.T) {
	cfg, _ := writeCorpus(t, map[string]string{
		"good.md": "---\nname: good\ndescription: Good rule\nrisk: none\nsource: local\nkeywords: x\n---\n```go\nfmt.Println()\n```\n",
	})
	out, err := execute(t, cfg, "validate", "--format", "json")
	require.NoError(t, err)

	var report struct {
		Files  int   `json:"files"`
		Issues []any `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Files)
	assert.Empty(t, report.Issues)
}

func TestConfigGet(t *testing.T) {
	cfg := defaultCorpus(t)

	out, err := execute(t, cfg, "config", "get", "budget")
	require.NoError(t, err)
	assert.Equal(t, "500\n", out)

	out, err = execute(t, cfg, "config", "get", "weights.glob")
	require.NoError(t, err)
	assert.Equal(t, "0.7\n", out)

	_, err = execute(t, cfg, "config", "get", "nope")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestConfigList(t *testing.T) {
	cfg := defaultCorpus(t)
	out, err := execute(t, cfg, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "budget: 500")
	assert.Contains(t, out, filepath.Join(filepath.Dir(cfg), "rules"))
}

func TestConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("version: 3\n"), 0o600))

	_, err := execute(t, cfg, "list")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))

	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.NotEmpty(t, exitErr.Suggestion)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, filepath.Join(t.TempDir(), "unused.yaml"), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "skillctx version "), out)
}

func TestQuietAndVerboseConflict(t *testing.T) {
	cfg := defaultCorpus(t)
	_, err := execute(t, cfg, "-v", "list")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestGenDoc(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultCorpus(t)
	out, err := execute(t, cfg, "gen-doc", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, dir)

	data, err := os.ReadFile(filepath.Join(dir, "skillctx_select.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\n"))
	assert.Contains(t, string(data), "title: skillctx select")
}
