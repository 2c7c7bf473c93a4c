package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"LLM_PROVIDER", "LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "LLM_MODEL", "LLM_TIMEOUT_SECONDS",
		"DATABASE_URL", "POSTGRES_HOST", "POSTGRES_USER", "POSTGRES_NAME",
		"REALTIME_BUS", "REDIS_ADDR", "WORKER_CONCURRENCY", "WORKER_REQUEUE_PENDING_AFTER_SECONDS", "CORS_ALLOW_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gem-key", cfg.LLM.APIKey)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, time.Minute, cfg.RequeuePendingAfter)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "postgres://u:p@localhost:5432/db", cfg.Bus.PostgresDSN)
}

func TestLoadConfigOpenAIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/db")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestLoadConfigFailsFast(t *testing.T) {
	clearEnv(t)
	t.Setenv("REALTIME_BUS", "redis")

	_, err := LoadConfig(nil)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "missing LLM_API_KEY")
	assert.Contains(t, msg, "DATABASE_URL")
	assert.Contains(t, msg, "REDIS_ADDR")
}
