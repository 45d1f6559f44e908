package registry

import (
	"cmp"
	"slices"

	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/skill"
)

// Snapshot is an immutable view of the registry at one version.
type Snapshot struct {
	version uint64
	docs    []skill.Document // sorted by ID
	byID    map[string]int
}

func emptySnapshot(version uint64) *Snapshot {
	return &Snapshot{version: version, byID: map[string]int{}}
}

func buildSnapshot(version uint64, docs []skill.Document) (*Snapshot, error) {
	s := &Snapshot{
		version: version,
		docs:    make([]skill.Document, 0, len(docs)),
		byID:    make(map[string]int, len(docs)),
	}

	sources := make(map[string]string, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			return nil, errors.Wrapf(ErrEmptyID, "document %d (%s)", i, d.Source)
		}
		if d.TokenCost < 0 || d.SummaryCost < 0 {
			return nil, errors.Wrapf(ErrNegativeCost, "skill %q", d.ID)
		}
		if !d.Tier.Valid() {
			return nil, errors.Wrapf(skill.ErrUnknownTier, "skill %q: tier %d", d.ID, int(d.Tier))
		}
		if prevSource, dup := sources[d.ID]; dup {
			return nil, &DuplicateIDError{ID: d.ID, Sources: []string{prevSource, d.Source}}
		}
		sources[d.ID] = d.Source
		s.docs = append(s.docs, d.Clone())
	}

	slices.SortFunc(s.docs, func(a, b skill.Document) int {
		return cmp.Compare(a.ID, b.ID)
	})
	for i, d := range s.docs {
		s.byID[d.ID] = i
	}
	return s, nil
}

// Version returns the registry version this snapshot was installed at.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Len returns the number of documents.
func (s *Snapshot) Len() int {
	return len(s.docs)
}

// Lookup returns the document with the given id.
func (s *Snapshot) Lookup(id string) (skill.Document, bool) {
	i, ok := s.byID[id]
	if !ok {
		return skill.Document{}, false
	}
	return s.docs[i], true
}

// All returns the documents sorted by id. The returned slice is a copy; the
// documents' own slices are shared and must be treated as read-only.
func (s *Snapshot) All() []skill.Document {
	return slices.Clone(s.docs)
}
