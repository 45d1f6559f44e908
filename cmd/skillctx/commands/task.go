package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/skillctx/internal/config"
	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/skill"
)

// taskFlags are the request inputs shared by select and render.
type taskFlags struct {
	files  []string
	text   string
	budget int
	dirs   []string
	format string
	output string
}

func (f *taskFlags) register(c *cobra.Command) {
	c.Flags().StringSliceVarP(&f.files, "file", "f", nil,
		"active file path (repeatable or comma-separated)")
	c.Flags().StringVarP(&f.text, "text", "t", "",
		"task description")
	c.Flags().IntVarP(&f.budget, "budget", "b", 0,
		"token budget (default from config)")
	c.Flags().StringSliceVarP(&f.dirs, "dir", "d", nil,
		"corpus directory (overrides corpus_dirs)")
	c.Flags().StringVarP(&f.output, "output", "o", "",
		"write output to file instead of stdout")
}

// taskContext builds the request, taking the budget from cfg unless the
// flag was given.
func (f *taskFlags) taskContext(c *cobra.Command, cfg *config.Config) (skill.TaskContext, error) {
	budget := cfg.Budget
	if c.Flags().Changed("budget") {
		budget = f.budget
	}
	if budget <= 0 {
		return skill.TaskContext{}, errors.NewUserError(
			errors.Newf("token budget must be positive, got %d", budget),
			"Pass --budget N with N > 0")
	}
	if len(f.files) == 0 && f.text == "" {
		return skill.TaskContext{}, errors.NewUserError(
			errors.New("nothing to match against"),
			"Pass at least one --file or a --text description")
	}
	return skill.TaskContext{
		ActiveFilePaths: f.files,
		FreeText:        f.text,
		TokenBudget:     budget,
	}, nil
}
