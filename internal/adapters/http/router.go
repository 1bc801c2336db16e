package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
	"github.com/tkohara/gikai-assistant/internal/core/ports"
	"github.com/tkohara/gikai-assistant/internal/observability/metrics"
)

const maxRequestBodyBytes = 4 << 20

// Config carries the adapter-level knobs. Pipeline behavior lives in
// the use cases, this only shapes the HTTP surface.
type Config struct {
	ServiceName    string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int
	QueueWait      time.Duration
}

type Router struct {
	cfg      Config
	embedder ports.Embedder
	ingestor ports.DocumentIngestor
	answers  ports.AnswerService
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg Config,
	embedder ports.Embedder,
	ingestor ports.DocumentIngestor,
	answers ports.AnswerService,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "gikai-assistant"
	}
	if cfg.QueueWait <= 0 {
		cfg.QueueWait = 2 * time.Second
	}

	return &Router{
		cfg:      cfg,
		embedder: embedder,
		ingestor: ingestor,
		answers:  answers,
		metrics:  serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.handleHealthz)
	mux.HandleFunc("POST /embed_query", rt.handleEmbedQuery)
	mux.HandleFunc("POST /embed_document", rt.handleEmbedDocument)
	mux.HandleFunc("POST /generate_answer", rt.handleGenerateAnswer)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.cfg.ServiceName, handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.MaxConcurrent, rt.cfg.QueueWait)
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return handler
}

func (rt *Router) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type embedQueryRequest struct {
	Query string `json:"query"`
}

type embedQueryResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (rt *Router) handleEmbedQuery(w http.ResponseWriter, r *http.Request) {
	var req embedQueryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	embedding, err := rt.embedder.EmbedQuery(r.Context(), req.Query)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, embedQueryResponse{Embedding: embedding})
}

type ingestChunk struct {
	Content string `json:"content"`
	Page    int    `json:"page"`
}

type embedDocumentRequest struct {
	Title      string        `json:"title"`
	SourceType string        `json:"source_type"`
	UserID     string        `json:"user_id"`
	Chunks     []ingestChunk `json:"chunks"`
}

type embedDocumentResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"docId"`
}

func (rt *Router) handleEmbedDocument(w http.ResponseWriter, r *http.Request) {
	var req embedDocumentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fragments := make([]domain.Fragment, 0, len(req.Chunks))
	for _, chunk := range req.Chunks {
		fragments = append(fragments, domain.Fragment{
			Content: chunk.Content,
			Page:    chunk.Page,
		})
	}

	documentID, err := rt.ingestor.Ingest(r.Context(), req.Title, req.SourceType, req.UserID, fragments)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordIngestedSections(rt.cfg.ServiceName, len(fragments))
	}

	writeJSON(w, http.StatusOK, embedDocumentResponse{
		Success:    true,
		DocumentID: documentID,
	})
}

type generateAnswerRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

func (rt *Router) handleGenerateAnswer(w http.ResponseWriter, r *http.Request) {
	var req generateAnswerRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	start := time.Now()
	answer, err := rt.answers.GenerateAnswer(r.Context(), req.Question, domain.SearchScope{UserID: req.UserID})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordAnswerObservation(rt.cfg.ServiceName, len(answer.References), time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := mapErrorToHTTPStatus(err)

	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		message = "internal server error"
	}

	slog.Error("request_failed",
		"request_id", requestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"status", statusCode,
		"error", err,
	)

	writeJSON(w, statusCode, map[string]string{"error": message})
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request body is empty"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}
