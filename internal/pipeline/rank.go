package pipeline

import (
	"sort"

	"github.com/jobalert/jobalert/internal/model"
)

// Rank orders candidates by score, highest first, keeping discovery order
// among equal scores, and keeps at most maxItems of them. maxItems <= 0 keeps
// all. The input slice is not modified.
func Rank(candidates []model.ScoredCandidate, maxItems int) []model.ScoredCandidate {
	ranked := make([]model.ScoredCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if maxItems > 0 && len(ranked) > maxItems {
		ranked = ranked[:maxItems]
	}
	return ranked
}
