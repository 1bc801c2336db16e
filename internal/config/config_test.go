package config

import (
	"testing"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

func TestLoadIncludesPipelineDefaults(t *testing.T) {
	t.Setenv("RETRIEVAL_MATCH_COUNT", "")
	t.Setenv("ANSWER_TOP_K", "")
	t.Setenv("SECTION_INSERT_BATCH_SIZE", "")
	t.Setenv("VECTOR_DIMENSION", "")
	t.Setenv("GEMINI_MODEL", "")

	cfg := Load()
	if cfg.RetrievalMatchCount != 50 {
		t.Fatalf("expected default match count 50, got %d", cfg.RetrievalMatchCount)
	}
	if cfg.AnswerTopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.AnswerTopK)
	}
	if cfg.SectionInsertBatchSize != 100 {
		t.Fatalf("expected default section batch size 100, got %d", cfg.SectionInsertBatchSize)
	}
	if cfg.VectorDimension != 768 {
		t.Fatalf("expected default vector dimension 768, got %d", cfg.VectorDimension)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("expected default gemini model, got %q", cfg.GeminiModel)
	}
}

func TestLoadParsesPipelineOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_MATCH_COUNT", "30")
	t.Setenv("ANSWER_TOP_K", "3")
	t.Setenv("GENERATOR_PROVIDER", "openai")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg := Load()
	if cfg.RetrievalMatchCount != 30 {
		t.Fatalf("expected match count 30, got %d", cfg.RetrievalMatchCount)
	}
	if cfg.AnswerTopK != 3 {
		t.Fatalf("expected top k 3, got %d", cfg.AnswerTopK)
	}
	if cfg.GeneratorProvider != "openai" {
		t.Fatalf("expected openai provider, got %q", cfg.GeneratorProvider)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Fatalf("expected openai model override, got %q", cfg.OpenAIModel)
	}
}

func TestValidateRequiresGeneratorCredentials(t *testing.T) {
	t.Setenv("GENERATOR_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := Load()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure without a gemini key")
	}
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	t.Setenv("GENERATOR_PROVIDER", "anthropic")

	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for an unknown provider")
	}
}

func TestValidateRejectsTopKBeyondMatchCount(t *testing.T) {
	t.Setenv("GENERATOR_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("RETRIEVAL_MATCH_COUNT", "5")
	t.Setenv("ANSWER_TOP_K", "10")

	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure when top k exceeds match count")
	}
}
