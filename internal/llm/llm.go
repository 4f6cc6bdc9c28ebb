package llm

import (
	"context"
	"errors"
)

// Client abstracts generative-AI providers for paper analysis.
type Client interface {
	// Analyze sends the prompt and returns the model's raw text response.
	Analyze(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned when no provider is wired, letting callers skip
// straight to fallback content without burning a network call.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is the null-object client used when no provider is configured.
type PlaceholderClient struct{}

// Analyze always reports ErrNotConfigured.
func (PlaceholderClient) Analyze(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotConfigured
}

var _ Client = PlaceholderClient{}
