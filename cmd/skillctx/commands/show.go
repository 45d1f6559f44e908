package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/skillctx/internal/corpus"
	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/skill"
	"github.com/thoreinstein/skillctx/pkg/frontmatter"
)

var (
	showDirs   []string
	showFormat string
)

func init() {
	showCmd.Flags().StringSliceVarP(&showDirs, "dir", "d", nil, "corpus directory (overrides corpus_dirs)")
	showCmd.Flags().StringVar(&showFormat, "format", "text", "output format: text, markdown, json, yaml, toml")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one document",
	Long: `Show a single document with its metadata and body.

Without an id, an interactive picker is opened when running in a terminal.
--format markdown prints the document as a corpus file, with the effective
tier and token costs written into its frontmatter.`,
	Example: `  skillctx show react-scroll
  skillctx show react-scroll --format markdown > rules/react-scroll.md
  skillctx show

  See Also: skillctx list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func runShow(c *cobra.Command, args []string) error {
	markdown := strings.EqualFold(showFormat, "markdown") || strings.EqualFold(showFormat, "md")
	var format outputFormat
	if !markdown {
		f, err := parseOutputFormat(showFormat)
		if err != nil {
			return err
		}
		format = f
	}

	cfg := currentConfig()
	e, err := buildEngine(c.Context(), cfg, corpusDirs(showDirs, cfg))
	if err != nil {
		return err
	}
	reg := e.Registry()

	var doc skill.Document
	if len(args) == 1 {
		d, ok := reg.Lookup(args[0])
		if !ok {
			return errors.NewUserError(
				errors.Wrapf(errors.ErrNotFound, "document %q", args[0]),
				"Run: skillctx list")
		}
		doc = d
	} else {
		if !isInteractive() {
			return errors.NewUserError(errors.New("document id required"), "Run: skillctx show <id>")
		}
		d, ok, err := pickDocument(reg.All())
		if err != nil || !ok {
			return err
		}
		doc = d
	}

	w := c.OutOrStdout()
	switch {
	case markdown:
		return writeDocumentMarkdown(w, doc)
	case format == formatText:
		writeDocumentText(w, doc)
		return nil
	default:
		return writeStructured(w, format, newDocumentView(doc))
	}
}

// pickDocument opens a fuzzy finder over docs. ok is false when the user
// aborts.
func pickDocument(docs []skill.Document) (skill.Document, bool, error) {
	if len(docs) == 0 {
		return skill.Document{}, false, errors.NewUserError(
			errors.Wrap(errors.ErrNotFound, "no documents loaded"),
			"Check corpus_dirs with: skillctx config get corpus_dirs")
	}

	idx, err := fuzzyfinder.Find(
		docs,
		func(i int) string {
			return fmt.Sprintf("%s [%s]", docs[i].ID, docs[i].Tier)
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			var sb strings.Builder
			writeDocumentText(&sb, docs[i])
			return sb.String()
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return skill.Document{}, false, nil
		}
		return skill.Document{}, false, errors.Wrap(err, "interactive selection failed")
	}
	return docs[idx], true, nil
}

func writeDocumentText(w io.Writer, d skill.Document) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s %s\n", bold(d.Title), tierColor(d.Tier.String()))
	fmt.Fprintf(w, "ID:       %s\n", d.ID)
	fmt.Fprintf(w, "Tokens:   %d\n", d.TokenCost)
	if d.HasSummary() {
		fmt.Fprintf(w, "Summary:  %s (%d tokens)\n", d.Summary, d.SummaryCost)
	}
	if len(d.Globs) > 0 {
		fmt.Fprintf(w, "Globs:    %s\n", strings.Join(d.Globs, ", "))
	}
	if len(d.Keywords) > 0 {
		fmt.Fprintf(w, "Keywords: %s\n", strings.Join(d.Keywords, ", "))
	}
	if d.Source != "" {
		fmt.Fprintf(w, "Source:   %s\n", d.Source)
	}
	if d.Body != "" {
		fmt.Fprintf(w, "\n%s\n", d.Body)
	}
}

func writeDocumentMarkdown(w io.Writer, d skill.Document) error {
	data, err := frontmatter.Format(corpus.HeaderFor(d), d.Body)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
