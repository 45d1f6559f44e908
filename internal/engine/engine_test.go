package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/skillctx/internal/cache"
	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/logging"
	"github.com/thoreinstein/skillctx/internal/match"
	"github.com/thoreinstein/skillctx/internal/registry"
	"github.com/thoreinstein/skillctx/internal/skill"
)

func goDoc(id string, tier skill.Tier, cost int) skill.Document {
	return skill.Document{
		ID:        id,
		Title:     strings.ToUpper(id),
		Body:      "guidance for " + id,
		TokenCost: cost,
		Tier:      tier,
		Globs:     []string{"**/*.go"},
		Keywords:  []string{"go"},
	}
}

func goTask(budget int) skill.TaskContext {
	return skill.TaskContext{
		ActiveFilePaths: []string{"internal/engine/engine.go"},
		FreeText:        "refactor the Go engine",
		TokenBudget:     budget,
	}
}

func newEngine(t *testing.T, docs []skill.Document, opts ...Option) *Engine {
	t.Helper()
	reg := registry.New(registry.WithLogger(logging.ForTest(t)))
	_, err := reg.Load(docs)
	require.NoError(t, err)
	e, err := New(reg, append([]Option{WithLogger(logging.ForTest(t))}, opts...)...)
	require.NoError(t, err)
	return e
}

type countingScorer struct {
	calls atomic.Int32
	inner match.Scorer
}

func (s *countingScorer) Match(tc skill.TaskContext, docs []skill.Document) []skill.ScoredCandidate {
	s.calls.Add(1)
	return s.inner.Match(tc, docs)
}

func newCountingScorer(t *testing.T) *countingScorer {
	t.Helper()
	m, err := match.New()
	require.NoError(t, err)
	return &countingScorer{inner: m}
}

func TestNew_RequiresRegistry(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestSelect_TieBrokenByID(t *testing.T) {
	e := newEngine(t, []skill.Document{
		goDoc("B", skill.TierCritical, 100),
		goDoc("A", skill.TierCritical, 100),
	})

	res, err := e.Select(context.Background(), goTask(150))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, res.IDs())
	assert.Equal(t, 1, res.DiscardedCount)
	assert.Equal(t, 100, res.TotalTokensUsed)
}

func TestSelect_FallsBackToSummary(t *testing.T) {
	doc := goDoc("A", skill.TierHigh, 50)
	doc.Summary = "short"
	doc.SummaryCost = 20
	e := newEngine(t, []skill.Document{doc})

	res, err := e.Select(context.Background(), goTask(30))
	require.NoError(t, err)
	require.Len(t, res.Inclusions, 1)
	assert.Equal(t, skill.FormSummary, res.Inclusions[0].Form)
	assert.Equal(t, 20, res.TotalTokensUsed)
}

func TestSelect_UnmatchedDocumentsExcluded(t *testing.T) {
	other := skill.Document{ID: "py", TokenCost: 1, Tier: skill.TierCritical, Globs: []string{"**/*.py"}}
	e := newEngine(t, []skill.Document{other, goDoc("go", skill.TierLow, 10)})

	res, err := e.Select(context.Background(), goTask(100))
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, res.IDs())
	assert.Zero(t, res.DiscardedCount)
}

func TestSelect_InvalidBudget(t *testing.T) {
	e := newEngine(t, nil)
	for _, budget := range []int{0, -5} {
		_, err := e.Select(context.Background(), goTask(budget))
		if !errors.Is(err, ErrInvalidBudget) {
			t.Errorf("Select(budget=%d) error = %v, want ErrInvalidBudget", budget, err)
		}
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Select(budget=%d) error = %v, want ErrInvalidInput", budget, err)
		}
	}
}

func TestSelect_CachesRepeatRequests(t *testing.T) {
	scorer := newCountingScorer(t)
	e := newEngine(t, []skill.Document{goDoc("a", skill.TierHigh, 10)}, WithScorer(scorer))

	first, err := e.Select(context.Background(), goTask(100))
	require.NoError(t, err)
	second, err := e.Select(context.Background(), goTask(100))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), scorer.calls.Load())
	assert.Equal(t, uint64(1), e.Cache().Stats().Hits)
}

func TestSelect_WhitespaceVariantsAgreeWithAndWithoutCache(t *testing.T) {
	doc := skill.Document{
		ID:        "a",
		Title:     "A",
		Body:      "animation guidance",
		TokenCost: 10,
		Tier:      skill.TierHigh,
		Keywords:  []string{"scroll animation"},
	}
	tc := func(text string) skill.TaskContext {
		return skill.TaskContext{FreeText: text, TokenBudget: 100}
	}

	uncached := newEngine(t, []skill.Document{doc}, WithoutCache())
	cached := newEngine(t, []skill.Document{doc})

	_, err := cached.Select(context.Background(), tc("scroll animation"))
	require.NoError(t, err)

	for _, text := range []string{"scroll\nanimation", "Scroll   animation", "scroll animation"} {
		want, err := uncached.Select(context.Background(), tc(text))
		require.NoError(t, err)
		got, err := cached.Select(context.Background(), tc(text))
		require.NoError(t, err)

		require.Len(t, want.Inclusions, 1, text)
		assert.Equal(t, want, got, text)
	}
	assert.Equal(t, uint64(3), cached.Cache().Stats().Hits)
}

func TestSelect_LoadInvalidatesCache(t *testing.T) {
	scorer := newCountingScorer(t)
	e := newEngine(t, []skill.Document{goDoc("old", skill.TierHigh, 10)}, WithScorer(scorer))
	ctx := context.Background()

	res, err := e.Select(ctx, goTask(100))
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, res.IDs())

	_, err = e.Registry().Load([]skill.Document{goDoc("new", skill.TierHigh, 10)})
	require.NoError(t, err)
	assert.Zero(t, e.Cache().Len())

	res, err = e.Select(ctx, goTask(100))
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, res.IDs())
	assert.Equal(t, int32(2), scorer.calls.Load())
}

func TestSelect_WithoutCache(t *testing.T) {
	scorer := newCountingScorer(t)
	e := newEngine(t, []skill.Document{goDoc("a", skill.TierHigh, 10)}, WithScorer(scorer), WithoutCache())
	assert.Nil(t, e.Cache())

	for range 3 {
		_, err := e.Select(context.Background(), goTask(100))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), scorer.calls.Load())
}

func TestSelect_WithBoundedCache(t *testing.T) {
	c := cache.New(cache.WithMaxEntries(1))
	e := newEngine(t, []skill.Document{goDoc("a", skill.TierHigh, 10)}, WithCache(c))

	for _, budget := range []int{10, 20, 30} {
		_, err := e.Select(context.Background(), goTask(budget))
		require.NoError(t, err)
	}
	assert.Same(t, c, e.Cache())
	assert.Equal(t, 1, c.Len())
}

func TestSelect_CancelledContext(t *testing.T) {
	e := newEngine(t, []skill.Document{goDoc("a", skill.TierHigh, 10)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Select(ctx, goTask(100))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRender(t *testing.T) {
	doc := goDoc("a", skill.TierHigh, 10)
	e := newEngine(t, []skill.Document{doc})

	out, res, err := e.Render(context.Background(), goTask(100))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, res.IDs())
	assert.Equal(t, "## A [HIGH]\n\nguidance for a", out)
}

func TestRender_InvalidBudget(t *testing.T) {
	e := newEngine(t, nil)
	_, _, err := e.Render(context.Background(), goTask(0))
	assert.True(t, errors.Is(err, ErrInvalidBudget))
}

// Every result must be computed from exactly one registry generation, even
// while loads race with requests.
func TestSelect_ConsistentUnderConcurrentLoads(t *testing.T) {
	generation := func(g int) []skill.Document {
		out := make([]skill.Document, 5)
		for i := range out {
			out[i] = goDoc(fmt.Sprintf("g%03d-%d", g, i), skill.TierHigh, 10)
		}
		return out
	}

	reg := registry.New()
	_, err := reg.Load(generation(0))
	require.NoError(t, err)
	e, err := New(reg)
	require.NoError(t, err)

	const generations = 50
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for g := 1; g <= generations; g++ {
			_, err := reg.Load(generation(g))
			assert.NoError(t, err)
		}
	}()

	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				res, err := e.Select(context.Background(), goTask(1000+w*100+i%3))
				if !assert.NoError(t, err) {
					return
				}
				ids := res.IDs()
				if !assert.Len(t, ids, 5) {
					return
				}
				prefix := ids[0][:4]
				for _, id := range ids {
					assert.True(t, strings.HasPrefix(id, prefix), "mixed generations in %v", ids)
				}
			}
		}()
	}
	wg.Wait()
}
