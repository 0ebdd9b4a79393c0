package llm

import (
	"context"
	"errors"
)

// ErrModelUnavailable is the single failure mode the recommendation
// pipeline sees from the model layer. Implementations wrap transport
// errors, API errors, and empty completions into it so callers can
// treat them uniformly.
var ErrModelUnavailable = errors.New("model unavailable")

// Client produces a free-form completion for a prompt.
type Client interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// PlaceholderClient stands in when no model is configured; every call
// reports ErrModelUnavailable so the pipeline takes its fallback path.
type PlaceholderClient struct{}

func (PlaceholderClient) Ask(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrModelUnavailable
}
