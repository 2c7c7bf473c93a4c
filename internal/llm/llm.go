// Package llm defines the text-generation surface the pipelines depend on.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultTemperature is used when a caller has no reason to pick another value.
const DefaultTemperature = 0.7

// Generation limits shared by every provider.
const (
	TopK            = 40
	TopP            = 0.95
	MaxOutputTokens = 8192
)

// Client sends one prompt and returns the model's raw text. Implementations do not retry.
type Client interface {
	GenerateContent(ctx context.Context, prompt string, temperature float64) (string, error)
}

var (
	ErrMissingAPIKey     = errors.New("llm: api key not configured")
	ErrEmptyPrompt       = errors.New("llm: empty prompt")
	ErrMalformedResponse = errors.New("llm: response missing generated text")
)

// HTTPError is returned when the provider answers with a non-2xx status.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("%s http %d: %s", e.Provider, e.StatusCode, body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// ClampTemperature keeps t within [0,1].
func ClampTemperature(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// Outcome classifies an error for logs and metrics.
func Outcome(err error) string {
	var httpErr *HTTPError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingAPIKey):
		return "missing_api_key"
	case errors.Is(err, ErrEmptyPrompt):
		return "empty_prompt"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.As(err, &httpErr):
		return fmt.Sprintf("http_%d", httpErr.StatusCode)
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport_error"
	}
}
