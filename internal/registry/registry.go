// Package registry holds the in-memory index of skill documents.
//
// The index is an immutable [Snapshot] published through an atomic pointer.
// Readers load the pointer and never block; [Registry.Load] builds a complete
// replacement snapshot and swaps it in, so a reader observes either the old
// index or the new one, never a mix.
package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/logging"
	"github.com/thoreinstein/skillctx/internal/skill"
)

// Sentinel errors for registry loads.
var (
	// ErrDuplicateID is matched by every *DuplicateIDError.
	ErrDuplicateID = errors.New("duplicate skill id")

	// ErrEmptyID is returned when a document in a batch has no id.
	ErrEmptyID = errors.New("skill id is required")

	// ErrNegativeCost is returned when a document declares a negative token cost.
	ErrNegativeCost = errors.New("token cost must not be negative")
)

// DuplicateIDError reports an id that occurs more than once in a single load
// batch. The batch is rejected as a whole.
type DuplicateIDError struct {
	ID string
	// Sources lists the origins of the colliding documents when known.
	Sources []string
}

func (e *DuplicateIDError) Error() string {
	srcs := slices.DeleteFunc(slices.Clone(e.Sources), func(s string) bool { return s == "" })
	if len(srcs) == 0 {
		return fmt.Sprintf("duplicate skill id %q", e.ID)
	}
	return fmt.Sprintf("duplicate skill id %q (%s)", e.ID, strings.Join(srcs, ", "))
}

// Unwrap lets errors.Is match ErrDuplicateID.
func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}

// Handle describes the outcome of a successful Load.
type Handle struct {
	// Version is the registry version installed by the load.
	Version uint64
	// Count is the number of documents in the new snapshot.
	Count int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for load events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry is the swappable document index. It is safe for concurrent use.
type Registry struct {
	loadMu  sync.Mutex // serializes Load
	current atomic.Pointer[Snapshot]

	subMu       sync.RWMutex
	subscribers []func(version uint64)

	logger *slog.Logger
}

// New creates an empty registry at version 0.
func New(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDiscard(r.logger)
	r.current.Store(emptySnapshot(0))
	return r
}

// Load replaces the entire index with docs and increments the version.
// A batch containing an empty or duplicate id, a negative cost or an
// unknown tier is rejected and the previous snapshot stays installed. Concurrent loads are applied one at a time; the
// last one applied wins.
func (r *Registry) Load(docs []skill.Document) (Handle, error) {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	prev := r.current.Load()
	next, err := buildSnapshot(prev.version+1, docs)
	if err != nil {
		r.logger.Warn("registry load rejected", "error", err, "version", prev.version)
		return Handle{}, err
	}
	r.current.Store(next)
	r.logger.Info("registry loaded", "version", next.version, "documents", len(next.docs))

	r.notify(next.version)
	return Handle{Version: next.version, Count: len(next.docs)}, nil
}

// Subscribe registers fn to be called with the new version after every
// successful Load. Callbacks run synchronously, in registration order, while
// further loads are held back.
func (r *Registry) Subscribe(fn func(version uint64)) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

func (r *Registry) notify(version uint64) {
	r.subMu.RLock()
	subs := slices.Clone(r.subscribers)
	r.subMu.RUnlock()
	for _, fn := range subs {
		fn(version)
	}
}

// Snapshot returns the currently installed snapshot. Callers that need
// several reads to agree with each other should take one snapshot and read
// from it.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Version returns the current registry version.
func (r *Registry) Version() uint64 {
	return r.Snapshot().Version()
}

// Lookup returns the document with the given id from the current snapshot.
func (r *Registry) Lookup(id string) (skill.Document, bool) {
	return r.Snapshot().Lookup(id)
}

// All returns every document in the current snapshot.
func (r *Registry) All() []skill.Document {
	return r.Snapshot().All()
}
