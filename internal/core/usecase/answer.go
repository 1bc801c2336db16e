package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
	"github.com/tkohara/gikai-assistant/internal/core/ports"
)

// NoMaterialMessage is the fixed user-facing answer when retrieval
// finds nothing inside the requester's scope.
const NoMaterialMessage = "関連する資料が見つかりませんでした。"

const (
	defaultMatchCount = 50
	defaultTopK       = 5
)

// AnswerConfig controls the candidate funnel. MatchCount deliberately
// over-fetches relative to TopK: hybrid fusion is cheap but noisy, the
// cross-encoder is precise but expensive, so the wide net is narrowed
// only at the re-ranking step.
type AnswerConfig struct {
	MatchCount int
	TopK       int
}

// StageTimer receives the elapsed time of each pipeline stage.
type StageTimer func(stage string, elapsed time.Duration)

type AnswerUseCase struct {
	embedder  ports.Embedder
	retriever ports.HybridRetriever
	reranker  ports.Reranker
	generator ports.AnswerGenerator
	cfg       AnswerConfig
	timer     StageTimer
}

func NewAnswerUseCase(
	embedder ports.Embedder,
	retriever ports.HybridRetriever,
	reranker ports.Reranker,
	generator ports.AnswerGenerator,
	cfg AnswerConfig,
	timer StageTimer,
) *AnswerUseCase {
	if cfg.MatchCount <= 0 {
		cfg.MatchCount = defaultMatchCount
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	return &AnswerUseCase{
		embedder:  embedder,
		retriever: retriever,
		reranker:  reranker,
		generator: generator,
		cfg:       cfg,
		timer:     timer,
	}
}

func (uc *AnswerUseCase) GenerateAnswer(
	ctx context.Context,
	question string,
	scope domain.SearchScope,
) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate answer", errors.New("question is empty"))
	}
	if strings.TrimSpace(scope.UserID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate answer", errors.New("scope user id is empty"))
	}

	queryVector, err := timed(uc, ctx, "embed", func(ctx context.Context) ([]float32, error) {
		return uc.embedder.EmbedQuery(ctx, question)
	})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	candidates, err := timed(uc, ctx, "retrieve", func(ctx context.Context) ([]domain.Candidate, error) {
		return uc.retriever.Retrieve(ctx, question, queryVector, uc.cfg.MatchCount, scope)
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid retrieve: %w", err)
	}

	// Empty retrieval is a terminal state, not an error. The reranker
	// and generator are never invoked on an empty candidate set.
	if len(candidates) == 0 {
		return &domain.Answer{
			Text:       NoMaterialMessage,
			References: []domain.Candidate{},
		}, nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Content
	}

	scores, err := timed(uc, ctx, "rerank", func(ctx context.Context) ([]float64, error) {
		return uc.reranker.Score(ctx, question, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("rerank candidates: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, domain.WrapError(
			domain.ErrUpstreamInvalidResponse,
			"rerank candidates",
			fmt.Errorf("scores/candidates mismatch: %d/%d", len(scores), len(candidates)),
		)
	}

	selected := selectTopCandidates(candidates, scores, uc.cfg.TopK)

	answerText, err := timed(uc, ctx, "generate", func(ctx context.Context) (string, error) {
		return uc.generator.GenerateFromPrompt(ctx, buildAnswerPrompt(question, selected))
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:       answerText,
		References: selected,
	}, nil
}

func timed[T any](uc *AnswerUseCase, ctx context.Context, stage string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	out, err := fn(ctx)
	if uc.timer != nil {
		uc.timer(stage, time.Since(start))
	}
	return out, err
}
