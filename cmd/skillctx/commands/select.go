package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/skillctx/internal/skill"
)

var selectFlags taskFlags

func init() {
	selectFlags.register(selectCmd)
	selectCmd.Flags().StringVar(&selectFlags.format, "format", "text",
		"output format: text, json, yaml, toml")
	rootCmd.AddCommand(selectCmd)
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Show which documents a task would receive",
	Long: `Select the documents relevant to a task and report which ones fit the
token budget, in injection order, with the form chosen for each.`,
	Example: `  skillctx select --file app/foo.tsx --text "optimize scroll animation"
  skillctx select -f internal/db/query.go -b 1500 --format json

  See Also: skillctx render`,
	Args: cobra.NoArgs,
	RunE: runSelect,
}

// selectionView is the structured form of a selection.
type selectionView struct {
	Budget     int             `json:"budget" yaml:"budget" toml:"budget"`
	TokensUsed int             `json:"tokens_used" yaml:"tokens_used" toml:"tokens_used"`
	Discarded  int             `json:"discarded" yaml:"discarded" toml:"discarded"`
	Inclusions []inclusionView `json:"inclusions" yaml:"inclusions" toml:"inclusions"`
}

type inclusionView struct {
	ID     string `json:"id" yaml:"id" toml:"id"`
	Title  string `json:"title" yaml:"title" toml:"title"`
	Tier   string `json:"tier" yaml:"tier" toml:"tier"`
	Form   string `json:"form" yaml:"form" toml:"form"`
	Tokens int    `json:"tokens" yaml:"tokens" toml:"tokens"`
	Source string `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
}

func newSelectionView(budget int, res skill.SelectionResult) selectionView {
	v := selectionView{
		Budget:     budget,
		TokensUsed: res.TotalTokensUsed,
		Discarded:  res.DiscardedCount,
		Inclusions: make([]inclusionView, len(res.Inclusions)),
	}
	for i, inc := range res.Inclusions {
		v.Inclusions[i] = inclusionView{
			ID:     inc.Document.ID,
			Title:  inc.Document.Title,
			Tier:   inc.Document.Tier.String(),
			Form:   inc.Form.String(),
			Tokens: inc.Cost(),
			Source: inc.Document.Source,
		}
	}
	return v
}

func runSelect(c *cobra.Command, _ []string) error {
	format, err := parseOutputFormat(selectFlags.format)
	if err != nil {
		return err
	}
	cfg := currentConfig()
	tc, err := selectFlags.taskContext(c, cfg)
	if err != nil {
		return err
	}

	e, err := buildEngine(c.Context(), cfg, corpusDirs(selectFlags.dirs, cfg))
	if err != nil {
		return err
	}
	res, err := e.Select(c.Context(), tc)
	if err != nil {
		return err
	}

	view := newSelectionView(tc.TokenBudget, res)
	data, err := render(func(w io.Writer) error {
		if format == formatText {
			return writeSelectionText(w, view)
		}
		return writeStructured(w, format, view)
	})
	if err != nil {
		return err
	}
	return emit(c, selectFlags.output, data)
}

func writeSelectionText(w io.Writer, v selectionView) error {
	if len(v.Inclusions) == 0 {
		fmt.Fprintf(w, "No documents selected (%d discarded).\n", v.Discarded)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tFORM\tTOKENS\tTIER")
	for i, inc := range v.Inclusions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", i+1, inc.ID, inc.Form, inc.Tokens, tierColor(inc.Tier))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d/%d tokens used, %d discarded\n", v.TokensUsed, v.Budget, v.Discarded)
	return nil
}
