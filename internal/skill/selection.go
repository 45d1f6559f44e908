package skill

import "slices"

// TaskContext describes a single selection request.
type TaskContext struct {
	// ActiveFilePaths are the files the agent is working on, in order.
	ActiveFilePaths []string
	// FreeText is the task description.
	FreeText string
	// TokenBudget is the maximum combined cost of injected documents.
	TokenBudget int
}

// ScoredCandidate is a document that survived trigger matching.
type ScoredCandidate struct {
	Document Document
	// MatchScore is in [0, 1].
	MatchScore float64
	// MatchedGlob reports whether any glob matched an active path.
	MatchedGlob bool
}

// Inclusion is one selected document and the form it will be injected in.
type Inclusion struct {
	Document Document
	Form     Form
}

// Cost returns the token cost of the chosen form.
func (i Inclusion) Cost() int {
	if i.Form == FormSummary {
		return i.Document.SummaryCost
	}
	return i.Document.TokenCost
}

// Text returns the text of the chosen form.
func (i Inclusion) Text() string {
	if i.Form == FormSummary {
		return i.Document.Summary
	}
	return i.Document.Body
}

// SelectionResult is the ordered output of the selector. The order of
// Inclusions is the injection order.
type SelectionResult struct {
	Inclusions      []Inclusion
	TotalTokensUsed int
	DiscardedCount  int
}

// IDs returns the included document ids in order.
func (r SelectionResult) IDs() []string {
	ids := make([]string, len(r.Inclusions))
	for i, inc := range r.Inclusions {
		ids[i] = inc.Document.ID
	}
	return ids
}

// Empty reports whether nothing was selected.
func (r SelectionResult) Empty() bool {
	return len(r.Inclusions) == 0
}

// Clone returns a copy whose Inclusions slice is not shared with r.
func (r SelectionResult) Clone() SelectionResult {
	r.Inclusions = slices.Clone(r.Inclusions)
	return r
}
