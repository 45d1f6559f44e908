package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/skill"
)

var (
	listDirs   []string
	listFormat string
	listTier   string
)

func init() {
	listCmd.Flags().StringSliceVarP(&listDirs, "dir", "d", nil, "corpus directory (overrides corpus_dirs)")
	listCmd.Flags().StringVar(&listFormat, "format", "text", "output format: text, json, yaml, toml")
	listCmd.Flags().StringVar(&listTier, "tier", "", "only list documents of this tier")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List loaded documents",
	Long: `List every document loaded from the corpus directories, sorted by id,
with its tier, token cost and trigger counts.`,
	Example: `  skillctx list
  skillctx list --tier critical --format yaml

  See Also: skillctx show, skillctx validate`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// documentView is the structured form of a listed document.
type documentView struct {
	ID          string   `json:"id" yaml:"id" toml:"id"`
	Title       string   `json:"title" yaml:"title" toml:"title"`
	Tier        string   `json:"tier" yaml:"tier" toml:"tier"`
	Tokens      int      `json:"tokens" yaml:"tokens" toml:"tokens"`
	SummaryCost int      `json:"summary_tokens,omitempty" yaml:"summary_tokens,omitempty" toml:"summary_tokens,omitempty"`
	Globs       []string `json:"globs,omitempty" yaml:"globs,omitempty" toml:"globs,omitempty"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty" toml:"keywords,omitempty"`
	Source      string   `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
}

type documentListView struct {
	Documents []documentView `json:"documents" yaml:"documents" toml:"documents"`
}

func newDocumentView(d skill.Document) documentView {
	v := documentView{
		ID:       d.ID,
		Title:    d.Title,
		Tier:     d.Tier.String(),
		Tokens:   d.TokenCost,
		Globs:    d.Globs,
		Keywords: d.Keywords,
		Source:   d.Source,
	}
	if d.HasSummary() {
		v.SummaryCost = d.SummaryCost
	}
	return v
}

func runList(c *cobra.Command, _ []string) error {
	format, err := parseOutputFormat(listFormat)
	if err != nil {
		return err
	}
	filter, err := parseTierFilter(listTier)
	if err != nil {
		return err
	}

	cfg := currentConfig()
	e, err := buildEngine(c.Context(), cfg, corpusDirs(listDirs, cfg))
	if err != nil {
		return err
	}

	var docs []skill.Document
	for _, d := range e.Registry().All() {
		if filter == nil || d.Tier == *filter {
			docs = append(docs, d)
		}
	}

	if format == formatText {
		return writeDocumentTable(c.OutOrStdout(), docs)
	}
	view := documentListView{Documents: make([]documentView, len(docs))}
	for i, d := range docs {
		view.Documents[i] = newDocumentView(d)
	}
	return writeStructured(c.OutOrStdout(), format, view)
}

func parseTierFilter(s string) (*skill.Tier, error) {
	if s == "" {
		return nil, nil
	}
	t, err := skill.ParseTier(s)
	if err != nil {
		return nil, errors.NewUserError(err, "Use one of: critical, high, medium, low")
	}
	return &t, nil
}

func writeDocumentTable(w io.Writer, docs []skill.Document) error {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTOKENS\tSUMMARY\tTRIGGERS\tTIER")
	for _, d := range docs {
		summary := "-"
		if d.HasSummary() {
			summary = fmt.Sprint(d.SummaryCost)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			d.ID, d.TokenCost, summary, triggerSummary(d), tierColor(d.Tier.String()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d document(s)\n", len(docs))
	return nil
}

func triggerSummary(d skill.Document) string {
	var parts []string
	if n := len(d.Globs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d glob(s)", n))
	}
	if n := len(d.Keywords); n > 0 {
		parts = append(parts, fmt.Sprintf("%d keyword(s)", n))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// tierColor colors a tier label. It is always printed in the last column
// so escape sequences don't disturb alignment.
func tierColor(tier string) string {
	switch tier {
	case skill.TierCritical.String():
		return color.RedString(tier)
	case skill.TierHigh.String():
		return color.YellowString(tier)
	case skill.TierMedium.String():
		return color.CyanString(tier)
	default:
		return tier
	}
}
