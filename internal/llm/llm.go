// Package llm defines the model invocation boundary shared by every provider.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-optimizer/internal/shared/telemetry"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Client sends a single prompt to a hosted model and returns its raw text.
// Implementations make exactly one attempt per call.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when the provider answered without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// ModelError wraps every provider failure, including timeouts.
type ModelError struct {
	Provider string
	Err      error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%s model call failed: %v", e.Provider, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// Timeout reports whether the call was cut off by its deadline.
func (e *ModelError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Wrap returns err as a *ModelError for provider. nil stays nil and an
// existing ModelError is returned unchanged.
func Wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	var modelErr *ModelError
	if errors.As(err, &modelErr) {
		return err
	}
	return &ModelError{Provider: provider, Err: err}
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

func (f ClientFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// WithLogging logs one llm.call event per Generate call.
func WithLogging(next Client, provider, model string) Client {
	return ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		start := time.Now()
		raw, err := next.Generate(ctx, prompt)
		fields := map[string]any{
			"request_id":     telemetry.RequestID(ctx),
			"provider":       provider,
			"model":          model,
			"prompt_bytes":   len(prompt),
			"response_bytes": len(raw),
			"duration_ms":    time.Since(start).Milliseconds(),
		}
		if err != nil {
			fields["error"] = err.Error()
			telemetry.Error("llm.call", fields)
			return raw, err
		}
		telemetry.Info("llm.call", fields)
		return raw, nil
	})
}
