// Package openai drafts answers through an OpenAI-compatible chat
// completion endpoint, as an alternative to Gemini.
package openai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

type Generator struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "init openai client", errors.New("api key is empty"))
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Generator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (g *Generator) GenerateFromPrompt(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrUpstreamUnavailable, "generate", err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.WrapError(domain.ErrUpstreamInvalidResponse, "generate", errors.New("empty choices"))
	}
	return resp.Choices[0].Message.Content, nil
}
