package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, "doctor_schedule.json", cfg.ScheduleFile)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModelID)
	assert.Equal(t, 8, cfg.MaxToolRounds)
	assert.False(t, cfg.RedisTLS)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", " Postgres ")
	t.Setenv("DATABASE_URL", "postgres://localhost/clinic")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("MAX_TOOL_ROUNDS", "5")
	t.Setenv("BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20241022-v2:0")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreBackend, "backend is normalized")
	assert.Equal(t, "postgres://localhost/clinic", cfg.DatabaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, 5, cfg.MaxToolRounds)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20241022-v2:0", cfg.BedrockModelID)
}

func TestLoadIgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("MAX_TOOL_ROUNDS", "many")
	t.Setenv("REDIS_TLS", "yes please")

	cfg := Load()
	assert.Equal(t, 8, cfg.MaxToolRounds)
	assert.False(t, cfg.RedisTLS)
}
