package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "SESSION_TTL", "GENERATION_TIMEOUT", "TEMPERATURE", "MAX_TOKENS", "LLM_PROVIDER"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 60*time.Second, cfg.GenerationTimeout)
	assert.InDelta(t, 0.9, cfg.Temperature, 1e-9)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("GENERATION_TIMEOUT", "90s")
	t.Setenv("TEMPERATURE", "0.4")
	t.Setenv("MAX_TOKENS", "2048")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 90*time.Second, cfg.GenerationTimeout)
	assert.InDelta(t, 0.4, cfg.Temperature, 1e-9)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "g-key", cfg.APIKey())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SESSION_TTL", "tomorrow"},
		{"SESSION_TTL", "-1h"},
		{"GENERATION_TIMEOUT", "0s"},
		{"TEMPERATURE", "hot"},
		{"TEMPERATURE", "3"},
		{"MAX_TOKENS", "many"},
		{"MAX_TOKENS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("loud"))
}
