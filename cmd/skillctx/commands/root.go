// Package commands implements the CLI commands for skillctx.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/skillctx/cmd"
	"github.com/thoreinstein/skillctx/internal/config"
	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/logging"
)

var (
	// verbosity holds the count of -v flags.
	verbosity int
	quiet     bool
	logFormat string
	// logFile receives a JSON copy of the logs when set.
	logFile    string
	configPath string
)

// loadedConfig is the effective configuration, set before any subcommand runs.
var loadedConfig *config.Config

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default: ./config.yaml or $XDG_CONFIG_HOME/skillctx/config.yaml)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("skillctx version {{.Version}}\n")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "skillctx",
	Short: "Select and inject skill documents into an agent's context",
	Long: `skillctx picks the skill and rule documents relevant to a task and fits
them into a token budget.

Documents are Markdown files with YAML frontmatter declaring a priority
tier, trigger globs and keywords. For each request skillctx scores every
document against the active file paths and the task description, then
fills the budget tier by tier, falling back to a document's summary when
the full text does not fit.`,
	Example: `  # Show which documents a task would receive
  skillctx select --file src/app.tsx --text "optimize scroll animation"

  # Produce the payload for an agent
  skillctx render --file src/app.tsx --budget 2000

  # Check a corpus for problems
  skillctx validate ./rules

  See Also: skillctx list, skillctx config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return loadConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger from the verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "Pass either -q or -v, not both")
	}

	level := logging.LevelFromVerbosity(verbosity)
	if quiet {
		level = slog.LevelError
	} else if verbosity == 0 {
		if val, ok := os.LookupEnv("SKILLCTX_DEBUG"); ok {
			switch val {
			case "1", "true":
				level = slog.LevelDebug
			case "2":
				level = logging.LevelTrace
			}
		}
	}

	format := logging.Format(logFormat)
	if format != logging.FormatText && format != logging.FormatJSON {
		return errors.NewUserError(errors.Newf("unknown log format %q", logFormat), "Use --log-format text or --log-format json")
	}

	opts := &slog.HandlerOptions{Level: level}
	var primary slog.Handler
	if format == logging.FormatJSON {
		primary = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	} else {
		primary = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handler := primary
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "opening log file"), "Check that the --log-file directory exists and is writable")
		}
		handler = logging.NewMultiHandler(primary, slog.NewJSONHandler(f, opts))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// loadConfig reads the configuration for every command except help and version.
func loadConfig(cmd *cobra.Command) error {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		loadedConfig = config.Default()
		return nil
	}

	config.Init()
	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.NewConfigError(err)
	}
	loadedConfig = cfg
	logging.FromContext(cmd.Context()).Debug("configuration loaded",
		"corpus_dirs", cfg.CorpusDirs, "budget", cfg.Budget)
	return nil
}

// currentConfig returns the loaded configuration, or the defaults when none
// was loaded.
func currentConfig() *config.Config {
	if loadedConfig == nil {
		return config.Default()
	}
	return loadedConfig
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
