// Package match scores skill documents against a task context.
//
// Two signals are combined: a glob signal (does any trigger glob match any
// active file path) and a keyword signal (what fraction of the document's
// keywords occur as whole words in the task description). Scoring is a pure
// function of its inputs, which keeps the selector and cache independent of
// how relevance is computed.
package match

import (
	"context"
	"log/slog"
	"math"

	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/logging"
	"github.com/thoreinstein/skillctx/internal/skill"
)

// ErrInvalidWeights is returned for weights that are negative or do not sum to 1.
var ErrInvalidWeights = errors.New("invalid match weights")

const weightTolerance = 1e-9

// Scorer produces scored candidates for a task. Implementations must be
// safe for concurrent use and must not retain docs.
type Scorer interface {
	Match(tc skill.TaskContext, docs []skill.Document) []skill.ScoredCandidate
}

// Weights controls how the glob and keyword signals are blended.
type Weights struct {
	Glob    float64 `mapstructure:"glob" yaml:"glob" json:"glob"`
	Keyword float64 `mapstructure:"keyword" yaml:"keyword" json:"keyword"`
}

// DefaultWeights returns the 0.7 glob / 0.3 keyword blend.
func DefaultWeights() Weights {
	return Weights{Glob: 0.7, Keyword: 0.3}
}

// Validate checks that both weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	if w.Glob < 0 || w.Keyword < 0 || math.IsNaN(w.Glob) || math.IsNaN(w.Keyword) {
		return errors.Wrapf(ErrInvalidWeights, "weights must be non-negative (glob=%v, keyword=%v)", w.Glob, w.Keyword)
	}
	if math.Abs(w.Glob+w.Keyword-1) > weightTolerance {
		return errors.Wrapf(ErrInvalidWeights, "weights must sum to 1 (glob=%v, keyword=%v)", w.Glob, w.Keyword)
	}
	return nil
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithWeights overrides the default signal weights.
func WithWeights(w Weights) Option {
	return func(m *Matcher) {
		m.weights = w
	}
}

// WithLogger sets the logger used to report skipped patterns.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// Matcher is the glob + keyword Scorer.
type Matcher struct {
	weights Weights
	logger  *slog.Logger
}

var _ Scorer = (*Matcher)(nil)

// New creates a Matcher. It fails only if the configured weights are invalid.
func New(opts ...Option) (*Matcher, error) {
	m := &Matcher{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.weights.Validate(); err != nil {
		return nil, err
	}
	m.logger = logging.OrDiscard(m.logger)
	return m, nil
}

// Weights returns the weights in use.
func (m *Matcher) Weights() Weights {
	return m.weights
}

// Match scores every document and returns the candidates, in input order.
// A document with a zero score and no glob match is left out entirely.
func (m *Matcher) Match(tc skill.TaskContext, docs []skill.Document) []skill.ScoredCandidate {
	paths := normalizePaths(tc.ActiveFilePaths)
	words := newWordIndex(tc.FreeText)
	reported := make(map[string]struct{})

	var out []skill.ScoredCandidate
	for _, d := range docs {
		matched := globMatch(d.Globs, paths, func(pattern string) {
			if _, ok := reported[pattern]; ok {
				return
			}
			reported[pattern] = struct{}{}
			m.logger.Debug("skipping malformed glob", "document", d.ID, "pattern", pattern)
		})
		kw := words.score(d.Keywords)

		globScore := 0.0
		if matched {
			globScore = 1
		}
		score := clamp01(m.weights.Glob*globScore + m.weights.Keyword*kw)

		if score == 0 && !matched {
			continue
		}
		m.logger.Log(context.Background(), logging.LevelTrace, "candidate scored",
			"document", d.ID, "score", score, "glob", matched, "keyword", kw)
		out = append(out, skill.ScoredCandidate{
			Document:    d,
			MatchScore:  score,
			MatchedGlob: matched,
		})
	}
	return out
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
