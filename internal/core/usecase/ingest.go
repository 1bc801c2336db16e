package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
	"github.com/tkohara/gikai-assistant/internal/core/ports"
)

type IngestDocumentUseCase struct {
	store    ports.DocumentStore
	embedder ports.Embedder
	events   ports.IngestEventPublisher
}

func NewIngestDocumentUseCase(
	store ports.DocumentStore,
	embedder ports.Embedder,
	events ports.IngestEventPublisher,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		store:    store,
		embedder: embedder,
		events:   events,
	}
}

// Ingest embeds every fragment in passage mode as one batch and
// persists the document together with all sections. Fragment order is
// preserved: section i carries the content, page and embedding of
// fragment i.
func (uc *IngestDocumentUseCase) Ingest(
	ctx context.Context,
	title, sourceType, userID string,
	fragments []domain.Fragment,
) (string, error) {
	if err := validateIngestInput(title, userID, fragments); err != nil {
		return "", err
	}

	contents := make([]string, len(fragments))
	for i, f := range fragments {
		contents[i] = f.Content
	}

	vectors, err := uc.embedder.EmbedPassages(ctx, contents)
	if err != nil {
		return "", fmt.Errorf("embed fragments: %w", err)
	}
	if len(vectors) != len(fragments) {
		return "", domain.WrapError(
			domain.ErrUpstreamInvalidResponse,
			"embed fragments",
			fmt.Errorf("vectors/fragments mismatch: %d/%d", len(vectors), len(fragments)),
		)
	}

	doc := &domain.Document{
		ID:         uuid.NewString(),
		Title:      title,
		SourceType: sourceType,
		UserID:     userID,
		CreatedAt:  time.Now().UTC(),
	}

	sections := make([]domain.Section, len(fragments))
	for i, f := range fragments {
		sections[i] = domain.Section{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Content:    f.Content,
			PageNumber: f.Page,
			Embedding:  vectors[i],
		}
	}

	if err := uc.store.SaveDocumentWithSections(ctx, doc, sections); err != nil {
		return "", fmt.Errorf("persist document: %w", err)
	}

	if uc.events != nil {
		if err := uc.events.PublishDocumentIngested(ctx, doc.ID); err != nil {
			slog.Warn("ingest_event_publish_failed", "document_id", doc.ID, "error", err)
		}
	}

	return doc.ID, nil
}

func validateIngestInput(title, userID string, fragments []domain.Fragment) error {
	if strings.TrimSpace(title) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "ingest document", errors.New("title is empty"))
	}
	if strings.TrimSpace(userID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "ingest document", errors.New("user id is empty"))
	}
	if len(fragments) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "ingest document", errors.New("no fragments"))
	}
	for i, f := range fragments {
		if strings.TrimSpace(f.Content) == "" {
			return domain.WrapError(domain.ErrInvalidInput, "ingest document", fmt.Errorf("fragment %d has empty content", i))
		}
		if f.Page < 0 {
			return domain.WrapError(domain.ErrInvalidInput, "ingest document", fmt.Errorf("fragment %d has negative page %d", i, f.Page))
		}
	}
	return nil
}
