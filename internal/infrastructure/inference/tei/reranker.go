package tei

import (
	"context"
	"fmt"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

type Reranker struct {
	client *Client
}

func NewReranker(client *Client) *Reranker {
	return &Reranker{client: client}
}

// Score returns one cross-encoder score per text, positionally aligned
// with the input. The server reports (index, score) pairs in its own
// order, so results are mapped back by index.
func (r *Reranker) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"query":      query,
		"texts":      texts,
		"raw_scores": true,
	}

	var ranked []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	}
	err := r.client.call(ctx, "rerank", func(ctx context.Context) error {
		ranked = nil
		return r.client.postJSON(ctx, "/rerank", request, &ranked, "rerank")
	})
	if err != nil {
		return nil, err
	}
	if len(ranked) != len(texts) {
		return nil, domain.WrapError(
			domain.ErrUpstreamInvalidResponse,
			"rerank",
			fmt.Errorf("scores/texts mismatch: %d/%d", len(ranked), len(texts)),
		)
	}

	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, item := range ranked {
		if item.Index < 0 || item.Index >= len(texts) || seen[item.Index] {
			return nil, domain.WrapError(
				domain.ErrUpstreamInvalidResponse,
				"rerank",
				fmt.Errorf("invalid result index %d", item.Index),
			)
		}
		scores[item.Index] = item.Score
		seen[item.Index] = true
	}
	return scores, nil
}
