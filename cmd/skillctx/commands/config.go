package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/paths"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect skillctx configuration",
	Long: `Inspect the effective configuration: the config file merged with
SKILLCTX_ environment overrides and built-in defaults.

Without a subcommand, lists all configuration values.`,
	Example: `  skillctx config
  skillctx config get weights.glob
  SKILLCTX_BUDGET=2000 skillctx config get budget

  See Also: skillctx config path`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key. Nested keys use dot notation.
List values are printed one per line.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List the effective configuration in YAML format.`,
	RunE:  runConfigList,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file in use",
	RunE:  runConfigPath,
}

func runConfigGet(c *cobra.Command, args []string) error {
	key := args[0]
	if !viper.IsSet(key) {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "config key %q", key),
			"Run: skillctx config list")
	}

	w := c.OutOrStdout()
	switch v := viper.Get(key).(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case map[string]any:
		return writeStructured(w, formatYAML, v)
	default:
		fmt.Fprintln(w, viper.GetString(key))
	}
	return nil
}

func runConfigList(c *cobra.Command, _ []string) error {
	enc := yaml.NewEncoder(c.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(currentConfig()); err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return enc.Close()
}

func runConfigPath(c *cobra.Command, _ []string) error {
	used := viper.ConfigFileUsed()
	if used == "" {
		fmt.Fprintf(c.OutOrStdout(), "no config file found (default location: %s)\n", paths.ConfigFile())
		return nil
	}
	fmt.Fprintln(c.OutOrStdout(), used)
	return nil
}
