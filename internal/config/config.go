package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/match"
	"github.com/thoreinstein/skillctx/internal/paths"
)

// EnvPrefix prefixes environment variable overrides.
const EnvPrefix = "SKILLCTX"

// Default values.
const (
	DefaultBudget        = 8000
	DefaultCharsPerToken = 4
)

// Config is the top-level configuration.
type Config struct {
	Version       int           `mapstructure:"version" yaml:"version" json:"version"`
	CorpusDirs    []string      `mapstructure:"corpus_dirs" yaml:"corpus_dirs" json:"corpus_dirs"`
	Budget        int           `mapstructure:"budget" yaml:"budget" json:"budget"`
	CharsPerToken int           `mapstructure:"chars_per_token" yaml:"chars_per_token" json:"chars_per_token"`
	Weights       match.Weights `mapstructure:"weights" yaml:"weights" json:"weights"`
	Cache         CacheConfig   `mapstructure:"cache" yaml:"cache" json:"cache"`
}

// CacheConfig controls selection memoization.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	// MaxEntries bounds the cache; 0 means unbounded.
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries" json:"max_entries"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:       1,
		CorpusDirs:    paths.DefaultCorpusDirs(),
		Budget:        DefaultBudget,
		CharsPerToken: DefaultCharsPerToken,
		Weights:       match.DefaultWeights(),
		Cache:         CacheConfig{Enabled: true},
	}
}

// Init registers search paths, environment overrides and defaults with the
// global Viper instance.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault("version", d.Version)
	viper.SetDefault("corpus_dirs", d.CorpusDirs)
	viper.SetDefault("budget", d.Budget)
	viper.SetDefault("chars_per_token", d.CharsPerToken)
	viper.SetDefault("weights.glob", d.Weights.Glob)
	viper.SetDefault("weights.keyword", d.Weights.Keyword)
	viper.SetDefault("cache.enabled", d.Cache.Enabled)
	viper.SetDefault("cache.max_entries", d.Cache.MaxEntries)
}

// Load reads the configuration file, applies overrides and validates the
// result. An explicit path must exist; otherwise a missing file means
// defaults. Relative corpus directories in a file are resolved against the
// file's directory, and "~" is expanded.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if err := resolveCorpusDirs(&cfg, viper.ConfigFileUsed()); err != nil {
		return nil, err
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "validating config: %s", strings.Join(msgs, "; "))
	}
	return &cfg, nil
}

func resolveCorpusDirs(cfg *Config, configFile string) error {
	fromFile := configFile != "" && viper.InConfig("corpus_dirs")
	base := filepath.Dir(configFile)
	for i, dir := range cfg.CorpusDirs {
		expanded, err := paths.ExpandHome(dir)
		if err != nil {
			return errors.Wrapf(err, "expanding corpus dir %q", dir)
		}
		if fromFile && !filepath.IsAbs(expanded) {
			expanded = filepath.Join(base, expanded)
		}
		cfg.CorpusDirs[i] = expanded
	}
	return nil
}
