package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/skillsprint-backend/internal/data/db"
	"github.com/yungbote/skillsprint-backend/internal/platform/envutil"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
	"github.com/yungbote/skillsprint-backend/internal/realtime/bus"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

type Config struct {
	Port        string
	Environment string
	Version     string

	Postgres db.PostgresConfig
	LLM      LLMConfig
	Bus      bus.Config

	WorkerConcurrency int
	WorkerQueueSize   int

	// RequeuePendingAfter is the minimum age of pending rows resubmitted at startup.
	RequeuePendingAfter time.Duration

	SupabaseJWTSecret    string
	CORSOrigins          []string
	TriggerRatePerMinute int
	TriggerBurst         int
}

// LoadConfig reads the environment. Missing required values are reported together.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		Postgres: db.PostgresConfig{
			URL:      envutil.String("DATABASE_URL", ""),
			Host:     envutil.String("POSTGRES_HOST", ""),
			Port:     envutil.String("POSTGRES_PORT", "5432"),
			User:     envutil.String("POSTGRES_USER", ""),
			Password: envutil.String("POSTGRES_PASSWORD", ""),
			Name:     envutil.String("POSTGRES_NAME", ""),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(envutil.String("LLM_PROVIDER", ProviderGemini)),
			Model:    envutil.String("LLM_MODEL", ""),
			BaseURL:  envutil.String("LLM_BASE_URL", ""),
			Timeout:  envutil.Seconds("LLM_TIMEOUT_SECONDS", 120*time.Second),
		},
		Bus: bus.Config{
			Kind:      envutil.String("REALTIME_BUS", bus.KindLocal),
			RedisAddr: envutil.String("REDIS_ADDR", ""),
			Channel:   envutil.String("REDIS_CHANNEL", ""),
		},
		WorkerConcurrency:    envutil.Int("WORKER_CONCURRENCY", 4),
		WorkerQueueSize:      envutil.Int("WORKER_QUEUE_SIZE", 256),
		RequeuePendingAfter:  envutil.Seconds("WORKER_REQUEUE_PENDING_AFTER_SECONDS", time.Minute),
		SupabaseJWTSecret:    envutil.String("SUPABASE_JWT_SECRET", ""),
		CORSOrigins:          envutil.List("CORS_ALLOW_ORIGINS"),
		TriggerRatePerMinute: envutil.Int("TRIGGER_RATE_PER_MINUTE", 10),
		TriggerBurst:         envutil.Int("TRIGGER_BURST", 3),
	}

	switch cfg.LLM.Provider {
	case ProviderOpenAI:
		cfg.LLM.APIKey = envutil.FirstString("LLM_API_KEY", "OPENAI_API_KEY")
	default:
		cfg.LLM.APIKey = envutil.FirstString("LLM_API_KEY", "GEMINI_API_KEY")
	}
	cfg.Bus.PostgresDSN = cfg.Postgres.DSN()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.SupabaseJWTSecret == "" && log != nil {
		log.Warn("SUPABASE_JWT_SECRET is not set; authenticated routes will reject every request")
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("missing LLM_API_KEY"))
	}
	if err := c.Postgres.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Bus.Kind == bus.KindRedis && c.Bus.RedisAddr == "" {
		errs = append(errs, errors.New("REALTIME_BUS=redis requires REDIS_ADDR"))
	}
	if c.WorkerConcurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be at least 1"))
	}
	return errors.Join(errs...)
}
