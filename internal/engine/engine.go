// Package engine wires the registry, matcher, selector, cache and assembler
// into a single request API.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/thoreinstein/skillctx/internal/cache"
	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/inject"
	"github.com/thoreinstein/skillctx/internal/logging"
	"github.com/thoreinstein/skillctx/internal/match"
	"github.com/thoreinstein/skillctx/internal/registry"
	"github.com/thoreinstein/skillctx/internal/selector"
	"github.com/thoreinstein/skillctx/internal/skill"
)

// ErrInvalidBudget is returned for requests whose token budget is not positive.
var ErrInvalidBudget = errors.Wrap(errors.ErrInvalidInput, "token budget must be positive")

// Option configures an Engine.
type Option func(*Engine)

// WithScorer replaces the default glob/keyword matcher.
func WithScorer(s match.Scorer) Option {
	return func(e *Engine) {
		e.scorer = s
	}
}

// WithCache uses c for memoization. c is subscribed to registry loads.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
		e.noCache = false
	}
}

// WithoutCache disables memoization; every request runs the full pipeline.
func WithoutCache() Option {
	return func(e *Engine) {
		e.cache = nil
		e.noCache = true
	}
}

// WithAssembler replaces the default assembler.
func WithAssembler(a *inject.Assembler) Option {
	return func(e *Engine) {
		e.assembler = a
	}
}

// WithLogger sets the logger. Each request logs with a request_id attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides time.Now for request timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine serves selection requests. It is safe for concurrent use.
type Engine struct {
	reg       *registry.Registry
	scorer    match.Scorer
	cache     *cache.Cache
	noCache   bool
	assembler *inject.Assembler
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an Engine over reg. Unless WithoutCache is given, a default
// unbounded cache is created.
func New(reg *registry.Registry, opts ...Option) (*Engine, error) {
	if reg == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "registry is required")
	}
	e := &Engine{reg: reg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrDiscard(e.logger)

	if e.scorer == nil {
		m, err := match.New(match.WithLogger(e.logger))
		if err != nil {
			return nil, err
		}
		e.scorer = m
	}
	if e.cache == nil && !e.noCache {
		e.cache = cache.New(cache.WithLogger(e.logger))
	}
	if e.cache != nil {
		e.cache.Invalidate(reg.Version())
		reg.Subscribe(e.cache.Invalidate)
	}
	if e.assembler == nil {
		e.assembler = inject.New(inject.WithLogger(e.logger))
	}
	return e, nil
}

// Registry returns the registry the engine reads from.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// Cache returns the engine's cache, or nil when caching is disabled.
func (e *Engine) Cache() *cache.Cache {
	return e.cache
}

// Select runs matching and selection for tc against a single registry
// snapshot, consulting the cache when enabled.
func (e *Engine) Select(ctx context.Context, tc skill.TaskContext) (skill.SelectionResult, error) {
	if tc.TokenBudget <= 0 {
		return skill.SelectionResult{}, errors.Wrapf(ErrInvalidBudget, "got %d", tc.TokenBudget)
	}

	logger := e.logger.With("request_id", uuid.NewString())
	ctx = logging.NewContext(ctx, logger)
	start := e.now()

	snap := e.reg.Snapshot()
	compute := func() skill.SelectionResult {
		candidates := e.scorer.Match(tc, snap.All())
		logger.Log(ctx, logging.LevelTrace, "matched candidates",
			"documents", snap.Len(), "candidates", len(candidates))
		return selector.Select(candidates, tc.TokenBudget)
	}

	var (
		res skill.SelectionResult
		err error
	)
	if e.cache == nil {
		res = compute()
	} else {
		res, err = e.cache.GetOrCompute(ctx, cache.NewKey(tc, snap.Version()), compute)
		if err != nil {
			return skill.SelectionResult{}, errors.Wrap(err, "waiting for selection")
		}
	}

	logger.Debug("selection complete",
		"version", snap.Version(),
		"included", len(res.Inclusions),
		"discarded", res.DiscardedCount,
		"tokens", res.TotalTokensUsed,
		"budget", tc.TokenBudget,
		"elapsed", e.now().Sub(start),
	)
	return res, nil
}

// Render selects for tc and renders the injection payload.
func (e *Engine) Render(ctx context.Context, tc skill.TaskContext) (string, skill.SelectionResult, error) {
	res, err := e.Select(ctx, tc)
	if err != nil {
		return "", skill.SelectionResult{}, err
	}
	out, err := e.assembler.Render(res)
	if err != nil {
		return "", res, errors.Wrap(err, "rendering selection")
	}
	return out, res, nil
}
