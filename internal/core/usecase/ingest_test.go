package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

type ingestStoreFake struct {
	doc      *domain.Document
	sections []domain.Section
	err      error
}

func (f *ingestStoreFake) SaveDocumentWithSections(_ context.Context, doc *domain.Document, sections []domain.Section) error {
	if f.err != nil {
		return f.err
	}
	copyDoc := *doc
	f.doc = &copyDoc
	f.sections = append([]domain.Section(nil), sections...)
	return nil
}

type passageEmbedderFake struct {
	texts []string
	err   error
	short bool
}

func (f *passageEmbedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (f *passageEmbedderFake) EmbedPassages(_ context.Context, texts []string) ([][]float32, error) {
	f.texts = texts
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

type publisherFake struct {
	documentID string
	err        error
}

func (f *publisherFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentID = documentID
	return nil
}

func TestIngestPreservesFragmentOrder(t *testing.T) {
	store := &ingestStoreFake{}
	embedder := &passageEmbedderFake{}
	publisher := &publisherFake{}
	uc := NewIngestDocumentUseCase(store, embedder, publisher)

	fragments := []domain.Fragment{
		{Content: "c0", Page: 1},
		{Content: "c1", Page: 2},
		{Content: "c2", Page: 5},
	}

	docID, err := uc.Ingest(context.Background(), "令和8年度 道路整備計画", "plan", "user-a", fragments)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if docID == "" {
		t.Fatalf("expected document id")
	}
	if store.doc == nil || store.doc.ID != docID {
		t.Fatalf("expected stored document with id %s", docID)
	}
	if store.doc.Title != "令和8年度 道路整備計画" || store.doc.UserID != "user-a" {
		t.Fatalf("unexpected document fields: %+v", store.doc)
	}
	if len(store.sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(store.sections))
	}
	for i, f := range fragments {
		s := store.sections[i]
		if s.Content != f.Content || s.PageNumber != f.Page {
			t.Fatalf("section %d: expected (%q,%d), got (%q,%d)", i, f.Content, f.Page, s.Content, s.PageNumber)
		}
		if s.DocumentID != docID {
			t.Fatalf("section %d not linked to document", i)
		}
		if len(s.Embedding) == 0 {
			t.Fatalf("section %d missing embedding", i)
		}
	}
	if publisher.documentID != docID {
		t.Fatalf("expected ingest event for %s, got %s", docID, publisher.documentID)
	}
}

func TestIngestValidation(t *testing.T) {
	uc := NewIngestDocumentUseCase(&ingestStoreFake{}, &passageEmbedderFake{}, nil)

	cases := []struct {
		name      string
		title     string
		userID    string
		fragments []domain.Fragment
	}{
		{"empty title", "", "user-a", []domain.Fragment{{Content: "c", Page: 1}}},
		{"empty user", "t", "", []domain.Fragment{{Content: "c", Page: 1}}},
		{"no fragments", "t", "user-a", nil},
		{"empty content", "t", "user-a", []domain.Fragment{{Content: "  ", Page: 1}}},
		{"negative page", "t", "user-a", []domain.Fragment{{Content: "c", Page: -1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Ingest(context.Background(), tc.title, "plan", tc.userID, tc.fragments)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !domain.IsKind(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestIngestEmbeddingMismatchIsInvalidResponse(t *testing.T) {
	uc := NewIngestDocumentUseCase(&ingestStoreFake{}, &passageEmbedderFake{short: true}, nil)

	_, err := uc.Ingest(context.Background(), "t", "plan", "user-a", []domain.Fragment{
		{Content: "c0", Page: 1},
		{Content: "c1", Page: 2},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUpstreamInvalidResponse) {
		t.Fatalf("expected ErrUpstreamInvalidResponse, got %v", err)
	}
}

func TestIngestStoreErrorFailsOperation(t *testing.T) {
	uc := NewIngestDocumentUseCase(&ingestStoreFake{err: errors.New("insert failed")}, &passageEmbedderFake{}, nil)

	_, err := uc.Ingest(context.Background(), "t", "plan", "user-a", []domain.Fragment{{Content: "c", Page: 1}})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestIngestPublishFailureIsNotFatal(t *testing.T) {
	store := &ingestStoreFake{}
	uc := NewIngestDocumentUseCase(store, &passageEmbedderFake{}, &publisherFake{err: errors.New("broker down")})

	docID, err := uc.Ingest(context.Background(), "t", "plan", "user-a", []domain.Fragment{{Content: "c", Page: 1}})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if docID == "" || store.doc == nil {
		t.Fatalf("expected successful ingestion despite publish failure")
	}
}
