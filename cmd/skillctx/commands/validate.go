package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/validator"
)

var validateFormat string

func init() {
	validateCmd.Flags().StringVar(&validateFormat, "format", "text", "report format: text, json")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [dir...]",
	Short: "Check corpus files for problems",
	Long: `Parse every corpus file and report problems: missing or malformed
frontmatter, unknown priorities, malformed globs, summaries that are not
cheaper than their body, duplicate ids, and offensive-risk skills without an
AUTHORIZED USE ONLY disclaimer.

Exits with status 1 when any error is found. Warnings and notes do not
affect the exit status.`,
	Example: `  skillctx validate
  skillctx validate ./rules ./skills --format json

  See Also: skillctx list`,
	RunE: runValidate,
}

func runValidate(c *cobra.Command, args []string) error {
	format, err := validator.ParseFormat(validateFormat)
	if err != nil {
		return errors.NewUserError(err, "Use --format text or --format json")
	}

	cfg := currentConfig()
	res, err := loadCorpus(c.Context(), cfg, corpusDirs(args, cfg))
	if err != nil {
		return err
	}

	if err := validator.NewReporter(c.OutOrStdout(), format).Report(res.Report); err != nil {
		return err
	}
	if n := res.Report.Count(validator.SeverityError); n > 0 {
		return errors.NewExitError(errors.Newf("validation failed with %d error(s)", n), errors.ExitUser)
	}
	return nil
}
