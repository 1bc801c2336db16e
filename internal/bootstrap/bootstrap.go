package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tkohara/gikai-assistant/internal/config"
	"github.com/tkohara/gikai-assistant/internal/core/ports"
	"github.com/tkohara/gikai-assistant/internal/core/usecase"
	"github.com/tkohara/gikai-assistant/internal/infrastructure/inference/tei"
	"github.com/tkohara/gikai-assistant/internal/infrastructure/llm/gemini"
	"github.com/tkohara/gikai-assistant/internal/infrastructure/llm/openai"
	"github.com/tkohara/gikai-assistant/internal/infrastructure/queue/nats"
	"github.com/tkohara/gikai-assistant/internal/infrastructure/repository/postgres"
	"github.com/tkohara/gikai-assistant/internal/infrastructure/resilience"
	"github.com/tkohara/gikai-assistant/internal/observability/metrics"
)

const serviceName = "gikai-assistant"

type App struct {
	Config  config.Config
	Metrics *metrics.HTTPServerMetrics

	Embedder ports.Embedder
	IngestUC ports.DocumentIngestor
	AnswerUC ports.AnswerService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	repo := postgres.NewDocumentRepository(db, cfg.VectorDimension, cfg.SectionInsertBatchSize)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	retriever := postgres.NewHybridRetriever(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	inferenceTimeout := time.Duration(cfg.InferenceTimeoutSeconds) * time.Second
	inferenceClient := tei.New(cfg.InferenceURL, inferenceTimeout, executor)
	embedder := tei.NewEmbedder(inferenceClient)
	reranker := tei.NewReranker(inferenceClient)

	generator, err := newGenerator(cfg, executor)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init generator: %w", err)
	}

	// NATS is optional. Without a URL the ingest use case simply skips
	// event publishing.
	var publisher ports.IngestEventPublisher
	var publisherClose func()
	if cfg.NATSURL != "" {
		natsPublisher, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		publisher = natsPublisher
		publisherClose = natsPublisher.Close
	}

	serverMetrics := metrics.NewHTTPServerMetrics(serviceName)
	stageTimer := func(stage string, elapsed time.Duration) {
		serverMetrics.RecordPipelineStage(serviceName, stage, elapsed)
	}

	answerUC := usecase.NewAnswerUseCase(embedder, retriever, reranker, generator, usecase.AnswerConfig{
		MatchCount: cfg.RetrievalMatchCount,
		TopK:       cfg.AnswerTopK,
	}, stageTimer)
	ingestUC := usecase.NewIngestDocumentUseCase(repo, embedder, publisher)

	return &App{
		Config:  cfg,
		Metrics: serverMetrics,

		Embedder: embedder,
		IngestUC: ingestUC,
		AnswerUC: answerUC,

		closeFn: func() {
			if publisherClose != nil {
				publisherClose()
			}
			if err := db.Close(); err != nil {
				slog.Warn("postgres_close_failed", "error", err)
			}
		},
	}, nil
}

func newGenerator(cfg config.Config, executor *resilience.Executor) (ports.AnswerGenerator, error) {
	switch cfg.GeneratorProvider {
	case config.ProviderOpenAI:
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	default:
		return gemini.New("", cfg.GeminiModel, cfg.GeminiAPIKey, 0, executor)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
