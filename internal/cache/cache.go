// Package cache memoizes selection results.
//
// Entries are keyed by the request signature and the registry version the
// result was computed against. The cache tracks the newest registry version
// it has seen; moving to a newer version clears every entry, and an entry is
// only ever returned when its version equals the current one.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/thoreinstein/skillctx/internal/logging"
	"github.com/thoreinstein/skillctx/internal/skill"
)

// Entry is a cached selection result.
type Entry struct {
	Result     skill.SelectionResult
	Version    uint64
	InsertedAt time.Time
}

// Stats are cumulative cache counters.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Invalidations uint64
	// Bypasses counts requests computed against an older registry version
	// than the cache's; their results are returned but never stored.
	Bypasses  uint64
	Evictions uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntries bounds the number of entries; the oldest entry is evicted
// first. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		c.maxEntries = max(n, 0)
	}
}

// WithClock overrides time.Now for InsertedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	version uint64
	entries map[uint64]Entry
	stats   Stats

	group singleflight.Group

	maxEntries int
	now        func() time.Time
	logger     *slog.Logger
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[uint64]Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDiscard(c.logger)
	return c
}

// GetOrCompute returns the cached result for key, computing and storing it
// on a miss. Concurrent callers with the same key share one computation.
// If ctx is done while waiting, GetOrCompute returns ctx.Err(); the shared
// computation keeps running and still populates the cache.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, compute func() skill.SelectionResult) (skill.SelectionResult, error) {
	if err := ctx.Err(); err != nil {
		return skill.SelectionResult{}, err
	}
	h, err := key.Hash()
	if err != nil {
		return skill.SelectionResult{}, err
	}

	c.mu.Lock()
	c.advanceLocked(key.RegistryVersion)
	if key.RegistryVersion < c.version {
		c.stats.Bypasses++
		c.mu.Unlock()
		c.logger.Debug("cache bypass for stale registry version",
			"key_version", key.RegistryVersion, "cache_version", c.version)
		return compute(), nil
	}
	if e, ok := c.lookupLocked(h); ok {
		c.stats.Hits++
		c.mu.Unlock()
		return e.Result.Clone(), nil
	}
	c.stats.Misses++
	c.mu.Unlock()

	ch := c.group.DoChan(strconv.FormatUint(h, 16), func() (any, error) {
		c.mu.Lock()
		if e, ok := c.lookupLocked(h); ok {
			c.mu.Unlock()
			return e.Result, nil
		}
		c.mu.Unlock()

		res := compute()
		c.store(h, key.RegistryVersion, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return skill.SelectionResult{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return skill.SelectionResult{}, r.Err
		}
		return r.Val.(skill.SelectionResult).Clone(), nil
	}
}

// Invalidate clears the cache if version is newer than any version seen so far.
func (c *Cache) Invalidate(version uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceLocked(version)
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a copy of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Version returns the newest registry version the cache has seen.
func (c *Cache) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *Cache) advanceLocked(version uint64) {
	if version <= c.version {
		return
	}
	dropped := len(c.entries)
	c.version = version
	c.entries = make(map[uint64]Entry)
	c.stats.Invalidations++
	c.logger.Debug("cache invalidated", "version", version, "dropped", dropped)
}

func (c *Cache) lookupLocked(h uint64) (Entry, bool) {
	e, ok := c.entries[h]
	if !ok || e.Version != c.version {
		return Entry{}, false
	}
	return e, true
}

func (c *Cache) store(h uint64, version uint64, res skill.SelectionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version {
		return
	}
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[h] = Entry{Result: res, Version: version, InsertedAt: c.now()}
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestKey uint64
		oldest    time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.InsertedAt.Before(oldest) || (e.InsertedAt.Equal(oldest) && k < oldestKey) {
			oldestKey, oldest, found = k, e.InsertedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
		c.stats.Evictions++
	}
}
