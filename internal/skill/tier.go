package skill

import (
	"strings"

	"github.com/thoreinstein/skillctx/internal/errors"
)

// Tier is a priority bucket. Lower values dominate higher ones during
// selection: every CRITICAL candidate is considered before any HIGH one.
type Tier int

// Priority tiers in selection order.
const (
	TierCritical Tier = iota
	TierHigh
	TierMedium
	TierLow
)

// ErrUnknownTier is returned by ParseTier for unrecognized names and by
// registry loads for out-of-range tier values.
var ErrUnknownTier = errors.New("unknown priority tier")

var tierNames = [...]string{
	TierCritical: "CRITICAL",
	TierHigh:     "HIGH",
	TierMedium:   "MEDIUM",
	TierLow:      "LOW",
}

// Tiers returns all tiers in selection order.
func Tiers() []Tier {
	return []Tier{TierCritical, TierHigh, TierMedium, TierLow}
}

// Valid reports whether t is one of the four defined tiers.
func (t Tier) Valid() bool {
	return t >= TierCritical && t <= TierLow
}

func (t Tier) String() string {
	if !t.Valid() {
		return "UNKNOWN"
	}
	return tierNames[t]
}

// ParseTier parses a tier name case-insensitively. "MEDIUM-HIGH" style
// impact labels found in rule corpora resolve to the stronger of the two.
func ParseTier(s string) (Tier, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range tierNames {
		if n == name {
			return Tier(i), nil
		}
	}
	if a, b, ok := strings.Cut(name, "-"); ok {
		ta, errA := ParseTier(a)
		tb, errB := ParseTier(b)
		if errA == nil && errB == nil {
			return min(ta, tb), nil
		}
	}
	return TierMedium, errors.Wrapf(ErrUnknownTier, "%q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.Wrapf(ErrUnknownTier, "%d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
