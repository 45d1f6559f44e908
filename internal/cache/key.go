package cache

import (
	"slices"
	"strings"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/skill"
)

// Key identifies a selection request. Build keys with NewKey so that paths
// are sorted and the free text is normalized.
type Key struct {
	ActiveFilePaths []string
	FreeText        string
	TokenBudget     int
	RegistryVersion uint64
}

// NewKey derives the cache key for tc evaluated against registry version.
func NewKey(tc skill.TaskContext, version uint64) Key {
	paths := slices.Clone(tc.ActiveFilePaths)
	slices.Sort(paths)
	return Key{
		ActiveFilePaths: paths,
		FreeText:        NormalizeText(tc.FreeText),
		TokenBudget:     tc.TokenBudget,
		RegistryVersion: version,
	}
}

// NormalizeText lowercases s and collapses whitespace runs to single spaces.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// keyFields has Key's fields without its methods, so hashstructure walks the
// fields instead of calling Key.Hash again.
type keyFields Key

// Hash returns the structural hash of k.
func (k Key) Hash() (uint64, error) {
	h, err := hashstructure.Hash(keyFields(k), hashstructure.FormatV2, nil)
	if err != nil {
		return 0, errors.Wrap(err, "hashing cache key")
	}
	return h, nil
}
