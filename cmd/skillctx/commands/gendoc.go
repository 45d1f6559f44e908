package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/pkg/frontmatter"
)

var (
	genDocDir    string
	genDocFormat string
)

func init() {
	genDocCmd.Flags().StringVarP(&genDocDir, "dir", "d", "", "output directory for documentation")
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "markdown", "documentation format: markdown, man")
	rootCmd.AddCommand(genDocCmd)
}

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate reference documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runGenDoc,
}

func runGenDoc(c *cobra.Command, _ []string) error {
	if genDocDir == "" {
		return errors.NewUserError(errors.New("output directory is required"), "Pass --dir DIR")
	}
	if err := os.MkdirAll(genDocDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	var err error
	switch genDocFormat {
	case "markdown", "md":
		err = doc.GenMarkdownTreeCustom(rootCmd, genDocDir, docPrepender, docLink)
	case "man":
		err = doc.GenManTree(rootCmd, &doc.GenManHeader{Title: "SKILLCTX", Section: "1"}, genDocDir)
	default:
		return errors.NewUserError(errors.Newf("unknown documentation format %q", genDocFormat), "Use --format markdown or --format man")
	}
	if err != nil {
		return errors.Wrap(err, "generating documentation")
	}

	fmt.Fprintf(c.OutOrStdout(), "Documentation generated in %s\n", genDocDir)
	return nil
}

// docPrepender adds a frontmatter block naming the command, e.g.
// skillctx_config_get.md gets the title "skillctx config get".
func docPrepender(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title := strings.ReplaceAll(base, "_", " ")
	out, err := frontmatter.Format(map[string]string{
		"title":       title,
		"description": "Reference for " + title,
	}, "")
	if err != nil {
		return ""
	}
	return string(out) + "\n"
}

func docLink(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name))) + "/"
}
