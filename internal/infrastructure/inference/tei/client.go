// Package tei talks to a text-embeddings-inference server hosting the
// multilingual-e5 embedding model and the mmarco cross-encoder.
package tei

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tkohara/gikai-assistant/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

func (c *Client) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, fn, classifyInferenceError)
	} else {
		err = fn(ctx)
	}
	return wrapUpstreamIfNeeded(operation, err)
}
