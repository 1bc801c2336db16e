package ports

import (
	"context"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

// Embedder turns text into unit-normalized vectors. The adapter is
// responsible for the asymmetric E5 mode prefixes: query mode for
// questions, passage mode for stored content. Swapping modes degrades
// retrieval silently, so the distinction is part of the contract.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedPassages(ctx context.Context, texts []string) ([][]float32, error)
}

// HybridRetriever returns a ranked candidate set combining lexical and
// vector similarity, hard-filtered to the given scope.
type HybridRetriever interface {
	Retrieve(ctx context.Context, queryText string, queryVector []float32, limit int, scope domain.SearchScope) ([]domain.Candidate, error)
}

// Reranker scores candidate texts against a query. Scores are aligned
// 1:1 with the input texts and only comparable within one call.
type Reranker interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// AnswerGenerator produces the drafted answer text from a composed prompt.
type AnswerGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (string, error)
}

// DocumentStore persists a document together with all of its sections.
type DocumentStore interface {
	SaveDocumentWithSections(ctx context.Context, doc *domain.Document, sections []domain.Section) error
}

// IngestEventPublisher announces completed ingestions to downstream
// consumers. Publishing is advisory; ingestion does not depend on it.
type IngestEventPublisher interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
}
