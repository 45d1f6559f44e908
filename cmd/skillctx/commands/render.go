package commands

import (
	"github.com/spf13/cobra"
)

var renderFlags taskFlags

func init() {
	renderFlags.register(renderCmd)
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the injection payload for a task",
	Long: `Select documents for a task and print them as one Markdown payload,
ready to be prepended to an agent's context. Each document becomes a block
headed by its title and tier; documents injected in summary form are marked.`,
	Example: `  skillctx render --file app/foo.tsx --text "optimize scroll animation"
  skillctx render -f main.go -b 4000 -o context.md

  See Also: skillctx select`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func runRender(c *cobra.Command, _ []string) error {
	cfg := currentConfig()
	tc, err := renderFlags.taskContext(c, cfg)
	if err != nil {
		return err
	}

	e, err := buildEngine(c.Context(), cfg, corpusDirs(renderFlags.dirs, cfg))
	if err != nil {
		return err
	}
	out, res, err := e.Render(c.Context(), tc)
	if err != nil {
		return err
	}
	if out != "" {
		out += "\n"
	}
	if err := emit(c, renderFlags.output, []byte(out)); err != nil {
		return err
	}
	if res.DiscardedCount > 0 && !quiet {
		c.PrintErrf("%d document(s) did not fit the %d token budget\n", res.DiscardedCount, tc.TokenBudget)
	}
	return nil
}
