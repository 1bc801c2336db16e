package usecase

import (
	"sort"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

// selectTopCandidates attaches cross-encoder scores to the candidates,
// orders them by score descending and keeps at most topK. The sort is
// stable so equal scores preserve the retrieval order.
func selectTopCandidates(candidates []domain.Candidate, scores []float64, topK int) []domain.Candidate {
	out := make([]domain.Candidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].Score = scores[i]
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}
