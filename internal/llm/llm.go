// internal/llm/llm.go
package llm

import (
	"context"
	"errors"
)

// ErrDisabled is returned by every call when no provider is configured.
var ErrDisabled = errors.New("advisor is disabled")

// LLM defines the interface for language model providers
type LLM interface {

	// GenerateResponse generates a response from the LLM given a prompt
	GenerateResponse(ctx context.Context, prompt string) (string, error)

	// IsModelAvailable checks if the configured model is available
	IsModelAvailable(ctx context.Context) error
}

type disabled struct{}

func (disabled) GenerateResponse(context.Context, string) (string, error) { return "", ErrDisabled }
func (disabled) IsModelAvailable(context.Context) error                 { return ErrDisabled }
