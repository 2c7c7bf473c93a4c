package app

import (
	"context"
	"fmt"

	"github.com/yungbote/skillsprint-backend/internal/llm"
	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/gemini"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
	"github.com/yungbote/skillsprint-backend/internal/platform/openai"
	"github.com/yungbote/skillsprint-backend/internal/realtime/bus"
)

type Clients struct {
	LLM llm.Client
	// Bus is nil in local mode.
	Bus bus.Bus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	ai, err := newLLMClient(log, cfg.LLM, metrics)
	if err != nil {
		return Clients{}, err
	}

	b, err := bus.New(ctx, log, cfg.Bus)
	if err != nil {
		return Clients{}, fmt.Errorf("init realtime bus: %w", err)
	}

	return Clients{LLM: ai, Bus: b}, nil
}

func newLLMClient(log *logger.Logger, cfg LLMConfig, metrics *observability.Metrics) (llm.Client, error) {
	switch cfg.Provider {
	case ProviderGemini:
		c := gemini.NewClient(log, gemini.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
		return llm.Instrument(c, ProviderGemini, c.Model(), log, metrics), nil
	case ProviderOpenAI:
		c := openai.NewClient(log, openai.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
		return llm.Instrument(c, ProviderOpenAI, c.Model(), log, metrics), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
