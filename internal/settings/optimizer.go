package settings

import "maestro/internal/domain"

// Suggestion is one advisory budget adjustment produced by the optimizer.
// The optimizer never applies a suggestion itself; a caller (CLI or API)
// decides whether to write it back through the mission/user settings
// interfaces.
type Suggestion struct {
	Setting string
	Current any
	Suggested any
	Reason  string
}

// SuggestAdjustments is a best-effort tuner, grounded on the original
// implementation's settings_optimizer module: it looks at a handful of
// recent mission stats and proposes budget changes, never auto-applying
// them.
func SuggestAdjustments(recent []domain.Stats, current map[string]any) []Suggestion {
	if len(recent) == 0 {
		return nil
	}

	var totalCost float64
	var totalSearches int
	for _, s := range recent {
		totalCost += s.TotalCost
		totalSearches += s.WebSearches + s.DocumentSearches
	}
	avgCost := totalCost / float64(len(recent))
	avgSearches := float64(totalSearches) / float64(len(recent))

	var out []Suggestion
	if avgCost > 1.0 {
		if cur, ok := current["max_search_iterations"]; ok {
			out = append(out, Suggestion{
				Setting:   "max_search_iterations",
				Current:   cur,
				Suggested: 2,
				Reason:    "recent missions averaged over $1.00; reducing search iterations lowers cost",
			})
		}
	}
	if avgSearches > 20 {
		if cur, ok := current["max_decomposed_queries"]; ok {
			out = append(out, Suggestion{
				Setting:   "max_decomposed_queries",
				Current:   cur,
				Suggested: 2,
				Reason:    "recent missions issued over 20 searches on average; fewer focused queries reduces redundant retrieval",
			})
		}
	}
	return out
}
