package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "WATSON_URL", "WATSON_TIMEOUT", "WATSON_MAX_ATTEMPTS",
		"VALKEY_INIT_ADDRESS", "DYNAMODB_TABLE", "KAFKA_BROKER", "LOG_LEVEL", "CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, DEFAULT_WATSON_URL, cfg.WatsonURL)
	assert.Equal(t, DEFAULT_WATSON_MODEL_ID, cfg.WatsonModelID)
	assert.Equal(t, 10*time.Second, cfg.WatsonTimeout)
	assert.Equal(t, 1, cfg.WatsonMaxAttempts)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.HistoryEnabled())
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("WATSON_TIMEOUT", "3s")
	t.Setenv("WATSON_MAX_ATTEMPTS", "3")
	t.Setenv("VALKEY_INIT_ADDRESS", "localhost:6379")
	t.Setenv("DYNAMODB_TABLE", "EmotionAnalyses")
	t.Setenv("KAFKA_BROKER", "localhost:29092")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.WatsonTimeout)
	assert.Equal(t, 3, cfg.WatsonMaxAttempts)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.CacheEnabled())
	assert.True(t, cfg.HistoryEnabled())
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("WATSON_TIMEOUT", "-1s")
	t.Setenv("WATSON_MAX_ATTEMPTS", "0")

	cfg := Load()

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.WatsonTimeout)
	assert.Equal(t, 1, cfg.WatsonMaxAttempts)
}

func TestLoadRejectsSubSecondCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "500ms")
	assert.Equal(t, 24*time.Hour, Load().CacheTTL)

	t.Setenv("CACHE_TTL", "90s")
	assert.Equal(t, 90*time.Second, Load().CacheTTL)
}
