// Package textgen provides generative text completion for guided decision
// steps (budget optimization, strategy copy).
//
// Defines a Provider interface with an OpenAI-compatible implementation and
// a noop fallback. Callers must treat any Provider error as recoverable and
// fall back to a deterministic rule.
package textgen

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by providers that cannot serve generation
// requests (no API key configured, service disabled). Callers switch to
// their deterministic fallback on it.
var ErrUnavailable = errors.New("textgen: provider unavailable")

// Usage reports token consumption for one generation call.
type Usage struct {
	Calls            int
	PromptTokens     int
	CompletionTokens int
}

// TotalTokens returns prompt plus completion tokens.
func (u Usage) TotalTokens() int { return u.PromptTokens + u.CompletionTokens }

// Provider generates structured JSON from a prompt.
type Provider interface {
	// GenerateJSON prompts the model and unmarshals the response body into
	// out. A malformed or non-JSON response is an error; callers fall back.
	GenerateJSON(ctx context.Context, prompt string, out any) (Usage, error)
}

// Noop is a Provider that always reports itself unavailable. Wired when no
// API key is configured so every guided step exercises its fallback.
type Noop struct{}

func (Noop) GenerateJSON(context.Context, string, any) (Usage, error) {
	return Usage{}, ErrUnavailable
}
