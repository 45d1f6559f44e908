// Package selector packs scored candidates into a token budget.
//
// Candidates are walked in a total order: tier (CRITICAL first), then match
// score descending, then token cost ascending, then id ascending. Each
// candidate is included in full if it fits, otherwise as its summary if that
// fits, otherwise it is discarded and the walk continues within the tier.
// Tiers strictly dominate: when a tier had to discard a candidate for lack
// of budget, no lower tier is considered.
package selector

import (
	"cmp"
	"slices"

	"github.com/thoreinstein/skillctx/internal/skill"
)

// Rank returns a copy of candidates in selection order. The order is total
// for candidates with distinct ids, so the result never depends on the input
// order.
func Rank(candidates []skill.ScoredCandidate) []skill.ScoredCandidate {
	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, compare)
	return ranked
}

func compare(a, b skill.ScoredCandidate) int {
	if c := cmp.Compare(a.Document.Tier, b.Document.Tier); c != 0 {
		return c
	}
	if c := cmp.Compare(b.MatchScore, a.MatchScore); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Document.TokenCost, b.Document.TokenCost); c != 0 {
		return c
	}
	return cmp.Compare(a.Document.ID, b.Document.ID)
}

// Select chooses the inclusions for budget. It never returns more than
// budget tokens; a negative budget is treated as zero. Degenerate inputs
// (no candidates, nothing fits) produce an empty result, not an error.
func Select(candidates []skill.ScoredCandidate, budget int) skill.SelectionResult {
	ranked := Rank(candidates)
	remaining := max(budget, 0)

	var res skill.SelectionResult
	seen := make(map[string]struct{}, len(ranked))
	closedBelow := skill.Tier(len(skill.Tiers()))

	for i, c := range ranked {
		if remaining == 0 {
			res.DiscardedCount += len(ranked) - i
			break
		}
		doc := c.Document
		if doc.Tier > closedBelow {
			res.DiscardedCount++
			continue
		}
		if _, dup := seen[doc.ID]; dup {
			res.DiscardedCount++
			continue
		}
		seen[doc.ID] = struct{}{}

		full, summary := max(doc.TokenCost, 0), max(doc.SummaryCost, 0)
		switch {
		case full <= remaining:
			res.Inclusions = append(res.Inclusions, skill.Inclusion{Document: doc, Form: skill.FormFull})
			remaining -= full
		case doc.HasSummary() && summary <= remaining:
			res.Inclusions = append(res.Inclusions, skill.Inclusion{Document: doc, Form: skill.FormSummary})
			remaining -= summary
		default:
			res.DiscardedCount++
			closedBelow = min(closedBelow, doc.Tier)
		}
	}

	res.TotalTokensUsed = max(budget, 0) - remaining
	return res
}
