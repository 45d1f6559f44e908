package corpus

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/logging"
	"github.com/thoreinstein/skillctx/internal/skill"
	"github.com/thoreinstein/skillctx/internal/validator"
	"github.com/thoreinstein/skillctx/pkg/fileutil"
)

// Option configures a Loader.
type Option func(*Loader)

// WithCharsPerToken sets the ratio used to estimate undeclared costs.
func WithCharsPerToken(n int) Option {
	return func(l *Loader) {
		l.est.CharsPerToken = n
	}
}

// WithMaxFileSize bounds the size of a single corpus file.
func WithMaxFileSize(n int64) Option {
	return func(l *Loader) {
		l.maxFileSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// Loader reads corpus directories.
type Loader struct {
	est         Estimator
	maxFileSize int64
	logger      *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		est:         Estimator{CharsPerToken: DefaultCharsPerToken},
		maxFileSize: fileutil.DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrDiscard(l.logger)
	return l
}

// Result is the outcome of loading one or more directories.
type Result struct {
	// Documents are in discovery order: directory order, then lexical path
	// order within a directory.
	Documents []skill.Document
	// Report holds every issue found. Files with error issues contributed
	// no document.
	Report *validator.Result
}

// Load discovers and parses every corpus file under dirs. When an id occurs
// in more than one file, the first one found wins and later ones are
// reported. Missing directories are skipped. Per-file problems are reported,
// not returned; the error is reserved for cancellation and unreadable
// directories.
func (l *Loader) Load(ctx context.Context, dirs ...string) (*Result, error) {
	out := &Result{Report: &validator.Result{}}
	firstSeen := make(map[string]string)

	for _, dir := range dirs {
		files, err := l.discover(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				l.logger.Debug("corpus directory not found", "dir", dir)
				continue
			}
			return nil, errors.Wrapf(err, "scanning %s", dir)
		}

		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out.Report.Files++

			doc, ok := l.loadFile(path, out.Report)
			if !ok {
				continue
			}
			if prev, dup := firstSeen[doc.ID]; dup {
				out.Report.AddWarning(path, "name", "duplicate id, already defined in "+prev, doc.ID)
				continue
			}
			firstSeen[doc.ID] = path
			out.Documents = append(out.Documents, doc)
		}
	}

	l.logger.Info("corpus loaded",
		"dirs", len(dirs),
		"files", out.Report.Files,
		"documents", len(out.Documents),
		"errors", out.Report.Count(validator.SeverityError),
		"warnings", out.Report.Count(validator.SeverityWarning),
	)
	return out, nil
}

// LoadFile parses a single corpus file.
func (l *Loader) LoadFile(path string) (skill.Document, *validator.Result) {
	res := &validator.Result{Files: 1}
	doc, _ := l.loadFile(path, res)
	return doc, res
}

func (l *Loader) loadFile(path string, res *validator.Result) (skill.Document, bool) {
	data, err := fileutil.ReadFileWithLimit(path, l.maxFileSize)
	if err != nil {
		res.AddError(path, "", err.Error(), nil)
		l.logger.Debug("skipping unreadable corpus file", "path", path, "error", err)
		return skill.Document{}, false
	}
	doc, ok := ParseDocument(path, data, l.est, res)
	if ok {
		l.logger.Log(context.Background(), logging.LevelTrace, "parsed corpus file",
			"path", path, "id", doc.ID, "tier", doc.Tier, "tokens", doc.TokenCost)
	}
	return doc, ok
}

// discover returns corpus files under dir in lexical order.
func (l *Loader) discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.Newf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isCorpusFile(name) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func isCorpusFile(name string) bool {
	if !strings.EqualFold(filepath.Ext(name), ".md") {
		return false
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.EqualFold(name, "README.md")
}
