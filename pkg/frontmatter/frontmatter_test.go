package frontmatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/skillctx/internal/errors"
)

type meta struct {
	Name     string   `yaml:"name"`
	Priority string   `yaml:"priority"`
	Globs    []string `yaml:"globs"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMeta meta
		wantBody string
		wantErr  error
	}{
		{
			name:     "valid frontmatter",
			input:    "---\nname: react-perf\npriority: HIGH\nglobs:\n  - \"**/*.tsx\"\n---\n\n# Body\n",
			wantMeta: meta{Name: "react-perf", Priority: "HIGH", Globs: []string{"**/*.tsx"}},
			wantBody: "\n# Body\n",
		},
		{
			name:     "no frontmatter",
			input:    "# Just markdown\n",
			wantBody: "# Just markdown\n",
		},
		{
			name:     "empty frontmatter",
			input:    "---\n---\nBody\n",
			wantBody: "Body\n",
		},
		{
			name:     "crlf line endings",
			input:    "---\r\nname: win\r\n---\r\nBody\r\n",
			wantMeta: meta{Name: "win"},
			wantBody: "Body\r\n",
		},
		{
			name:     "byte order mark",
			input:    "\xef\xbb\xbf---\nname: bom\n---\nBody",
			wantMeta: meta{Name: "bom"},
			wantBody: "Body",
		},
		{
			name:     "closing delimiter at eof",
			input:    "---\nname: eof\n---",
			wantMeta: meta{Name: "eof"},
			wantBody: "",
		},
		{
			name:     "horizontal rule in body is not a delimiter",
			input:    "---\nname: hr\n---\nabove\n---\nbelow\n",
			wantMeta: meta{Name: "hr"},
			wantBody: "above\n---\nbelow\n",
		},
		{
			name:    "unterminated",
			input:   "---\nname: open\nbody without end\n",
			wantErr: ErrUnterminated,
		},
		{
			name:    "invalid yaml",
			input:   "---\nname: [broken\n---\nBody\n",
			wantErr: ErrInvalidYAML,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, body, err := Parse[meta]([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error = %v", err)
			}
			assert.Equal(t, tt.wantMeta, got)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestMustParse_Missing(t *testing.T) {
	_, _, err := MustParse[meta]([]byte("no header here"))
	assert.True(t, errors.Is(err, ErrMissingFrontmatter))
}

func TestMustParse_Present(t *testing.T) {
	got, body, err := MustParse[meta]([]byte("---\nname: x\n---\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, "body", string(body))
}

func TestParse_MapTarget(t *testing.T) {
	got, _, err := Parse[map[string]any]([]byte("---\nrisk: offensive\ntokens: 12\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, "offensive", got["risk"])
	assert.Equal(t, 12, got["tokens"])
}

func TestFormat_RoundTrip(t *testing.T) {
	in := meta{Name: "fmt", Priority: "LOW", Globs: []string{"*.go"}}
	out, err := Format(in, "Body text")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "---\nname: fmt\n"))
	assert.True(t, strings.HasSuffix(string(out), "---\n\nBody text\n"))

	got, body, err := MustParse[meta](out)
	require.NoError(t, err)
	assert.Equal(t, in, got)
	assert.Equal(t, "\nBody text\n", string(body))
}

func TestFormat_EmptyBody(t *testing.T) {
	out, err := Format(map[string]string{"name": "x"}, "")
	require.NoError(t, err)
	assert.Equal(t, "---\nname: x\n---\n", string(out))
}
