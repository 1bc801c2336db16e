package tei

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

func TestRerankerAlignsScoresByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			http.NotFound(w, r)
			return
		}
		var payload struct {
			Query string   `json:"query"`
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Query != "q" || len(payload.Texts) != 3 {
			t.Fatalf("unexpected request: %+v", payload)
		}
		// Server returns its own ranked order, not input order.
		_, _ = w.Write([]byte(`[{"index":2,"score":5.5},{"index":0,"score":1.5},{"index":1,"score":-0.5}]`))
	}))
	defer server.Close()

	reranker := NewReranker(New(server.URL, 0, nil))
	scores, err := reranker.Score(context.Background(), "q", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	want := []float64{1.5, -0.5, 5.5}
	for i, s := range scores {
		if s != want[i] {
			t.Fatalf("score %d: expected %f, got %f", i, want[i], s)
		}
	}
}

func TestRerankerCountMismatchIsInvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"index":0,"score":1.0}]`))
	}))
	defer server.Close()

	reranker := NewReranker(New(server.URL, 0, nil))
	_, err := reranker.Score(context.Background(), "q", []string{"a", "b"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUpstreamInvalidResponse) {
		t.Fatalf("expected ErrUpstreamInvalidResponse, got %v", err)
	}
}

func TestRerankerRejectsDuplicateIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"index":0,"score":1.0},{"index":0,"score":2.0}]`))
	}))
	defer server.Close()

	reranker := NewReranker(New(server.URL, 0, nil))
	_, err := reranker.Score(context.Background(), "q", []string{"a", "b"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUpstreamInvalidResponse) {
		t.Fatalf("expected ErrUpstreamInvalidResponse, got %v", err)
	}
}

func TestRerankerEmptyInputSkipsCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer server.Close()

	reranker := NewReranker(New(server.URL, 0, nil))
	scores, err := reranker.Score(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if scores != nil || called {
		t.Fatalf("expected no call and nil scores for empty input")
	}
}
