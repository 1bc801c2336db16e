package ports

import (
	"context"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

// AnswerService is the inbound contract for the answer-drafting pipeline.
type AnswerService interface {
	GenerateAnswer(ctx context.Context, question string, scope domain.SearchScope) (*domain.Answer, error)
}

// DocumentIngestor is the inbound contract for adding knowledge.
type DocumentIngestor interface {
	Ingest(ctx context.Context, title, sourceType, userID string, fragments []domain.Fragment) (string, error)
}
