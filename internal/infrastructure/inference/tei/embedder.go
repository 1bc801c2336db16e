package tei

import (
	"context"
	"fmt"
	"math"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

// E5 asymmetric retrieval prefixes. Questions and stored passages must
// be tagged differently before inference; swapping or omitting the tag
// degrades relevance without raising an error.
const (
	queryPrefix   = "query: "
	passagePrefix = "passage: "
)

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{queryPrefix + text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) EmbedPassages(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = passagePrefix + t
	}
	return e.embed(ctx, inputs)
}

func (e *Embedder) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	request := map[string]any{
		"inputs":    inputs,
		"normalize": true,
	}

	var vectors [][]float32
	err := e.client.call(ctx, "embed", func(ctx context.Context) error {
		vectors = nil
		return e.client.postJSON(ctx, "/embed", request, &vectors, "embed")
	})
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(inputs) {
		return nil, domain.WrapError(
			domain.ErrUpstreamInvalidResponse,
			"embed",
			fmt.Errorf("vectors/inputs mismatch: %d/%d", len(vectors), len(inputs)),
		)
	}

	// Downstream similarity is a plain dot product, so unit length is
	// enforced here rather than trusted from the server.
	for i := range vectors {
		l2Normalize(vectors[i])
	}
	return vectors, nil
}

func l2Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
