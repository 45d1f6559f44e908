package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/skillctx/internal/cache"
	"github.com/thoreinstein/skillctx/internal/config"
	"github.com/thoreinstein/skillctx/internal/corpus"
	"github.com/thoreinstein/skillctx/internal/engine"
	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/logging"
	"github.com/thoreinstein/skillctx/internal/match"
	"github.com/thoreinstein/skillctx/internal/registry"
	"github.com/thoreinstein/skillctx/internal/validator"
	"github.com/thoreinstein/skillctx/pkg/fileutil"
)

// outputFormat selects how structured results are printed.
type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
	formatTOML outputFormat = "toml"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case "":
		return formatText, nil
	case formatText, formatJSON, formatYAML, formatTOML:
		return f, nil
	default:
		return "", errors.NewUserError(
			errors.Newf("unknown output format %q", s),
			"Use one of: text, json, yaml, toml")
	}
}

// writeStructured encodes v in a machine-readable format.
func writeStructured(w io.Writer, format outputFormat, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encoding JSON")
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	case formatTOML:
		return errors.Wrap(toml.NewEncoder(w).Encode(v), "encoding TOML")
	default:
		return errors.Newf("format %q is not structured", format)
	}
}

// corpusDirs returns the directories named on the command line, or the
// configured ones.
func corpusDirs(flagDirs []string, cfg *config.Config) []string {
	if len(flagDirs) > 0 {
		return flagDirs
	}
	return cfg.CorpusDirs
}

// loadCorpus reads dirs with the configured token ratio.
func loadCorpus(ctx context.Context, cfg *config.Config, dirs []string) (*corpus.Result, error) {
	loader := corpus.NewLoader(
		corpus.WithCharsPerToken(cfg.CharsPerToken),
		corpus.WithLogger(logging.FromContext(ctx)),
	)
	res, err := loader.Load(ctx, dirs...)
	if err != nil {
		return nil, errors.NewSystemError(errors.Wrap(err, "loading corpus"), "")
	}
	return res, nil
}

// buildEngine loads the corpus under dirs into a fresh registry and wires an
// engine over it according to cfg.
func buildEngine(ctx context.Context, cfg *config.Config, dirs []string) (*engine.Engine, error) {
	logger := logging.FromContext(ctx)

	res, err := loadCorpus(ctx, cfg, dirs)
	if err != nil {
		return nil, err
	}
	if n := res.Report.Count(validator.SeverityError); n > 0 {
		logger.Warn("some corpus files were skipped; run skillctx validate for details", "errors", n)
	}

	reg := registry.New(registry.WithLogger(logger))
	if _, err := reg.Load(res.Documents); err != nil {
		return nil, errors.NewSystemError(errors.Wrap(err, "building registry"), "")
	}

	matcher, err := match.New(match.WithWeights(cfg.Weights), match.WithLogger(logger))
	if err != nil {
		return nil, errors.NewConfigError(err)
	}

	opts := []engine.Option{
		engine.WithScorer(matcher),
		engine.WithLogger(logger),
	}
	if cfg.Cache.Enabled {
		opts = append(opts, engine.WithCache(cache.New(
			cache.WithMaxEntries(cfg.Cache.MaxEntries),
			cache.WithLogger(logger),
		)))
	} else {
		opts = append(opts, engine.WithoutCache())
	}

	e, err := engine.New(reg, opts...)
	if err != nil {
		return nil, errors.NewSystemError(err, "")
	}
	return e, nil
}

// emit writes data to path atomically, or to the command's output when path
// is empty.
func emit(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return errors.NewSystemError(errors.Wrapf(err, "writing %s", path), "")
	}
	logging.FromContext(cmd.Context()).Info("output written", "path", path, "bytes", len(data))
	return nil
}

// render runs fn against a buffer so output can be emitted in one write.
func render(fn func(w io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// isInteractive reports whether both stdin and stdout are terminals.
func isInteractive() bool {
	return logging.IsTTY(os.Stdin) && logging.IsTTY(os.Stdout)
}
