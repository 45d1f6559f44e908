package skill

import (
	"maps"
	"slices"
)

// Document is a single skill or rule file in its parsed form.
type Document struct {
	// ID is the stable identifier, unique within a registry.
	ID string
	// Title is the human-readable heading used when the document is injected.
	Title string
	// Body is the full guidance text.
	Body string
	// TokenCost is the precomputed cost of Body.
	TokenCost int
	// Tier is the priority bucket.
	Tier Tier
	// Globs are path patterns that trigger the document.
	Globs []string
	// Keywords are lowercase trigger words matched against the task description.
	Keywords []string
	// Summary is an optional shorter form of Body.
	Summary string
	// SummaryCost is the precomputed cost of Summary.
	SummaryCost int
	// Source records where the document was loaded from. Informational only.
	Source string
	// Metadata holds additional frontmatter fields such as risk or source.
	Metadata map[string]string
}

// HasSummary reports whether the document offers a usable summary form.
// A summary that is not strictly cheaper than the body is ignored.
func (d Document) HasSummary() bool {
	return d.Summary != "" && d.SummaryCost < d.TokenCost
}

// Clone returns a deep copy of d so the original's slices and maps can't be
// modified through the copy.
func (d Document) Clone() Document {
	d.Globs = slices.Clone(d.Globs)
	d.Keywords = slices.Clone(d.Keywords)
	d.Metadata = maps.Clone(d.Metadata)
	return d
}

// Form is the representation of a document chosen for injection.
type Form int

const (
	// FormFull injects the document body.
	FormFull Form = iota
	// FormSummary injects the summary in place of the body.
	FormSummary
)

func (f Form) String() string {
	if f == FormSummary {
		return "summary"
	}
	return "full"
}

// MarshalText implements encoding.TextMarshaler.
func (f Form) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
