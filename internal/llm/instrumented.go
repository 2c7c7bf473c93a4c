package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

type instrumented struct {
	next     Client
	provider string
	model    string
	log      *logger.Logger
	metrics  *observability.Metrics
}

// Instrument wraps next with logging, tracing and request metrics. metrics may be nil.
func Instrument(next Client, provider, model string, log *logger.Logger, metrics *observability.Metrics) Client {
	if next == nil {
		return nil
	}
	return &instrumented{
		next:     next,
		provider: provider,
		model:    model,
		log:      log.With("component", "LLMClient", "provider", provider, "model", model),
		metrics:  metrics,
	}
}

func (c *instrumented) GenerateContent(ctx context.Context, prompt string, temperature float64) (string, error) {
	ctx, span := observability.StartSpan(ctx, "llm.generate_content",
		attribute.String("llm.provider", c.provider),
		attribute.String("llm.model", c.model),
		attribute.Float64("llm.temperature", temperature),
		attribute.Int("llm.prompt_chars", len(prompt)),
	)
	defer span.End()

	start := time.Now()
	out, err := c.next.GenerateContent(ctx, prompt, temperature)
	dur := time.Since(start)
	outcome := Outcome(err)
	c.metrics.ObserveLLMRequest(c.provider, c.model, outcome, dur)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.log.Warn("LLM request failed", "outcome", outcome, "duration_ms", dur.Milliseconds(), "error", err)
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.response_chars", len(out)))
	c.log.Debug("LLM request succeeded", "duration_ms", dur.Milliseconds(), "response_chars", len(out))
	return out, nil
}
