package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL   string
	SessionTTL time.Duration

	LLMProvider     string
	ModelName       string
	ImageModelName  string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	VeniceAPIKey    string
	GeminiAPIKey    string
	OllamaURL       string

	CatalogPath       string
	ContentRating     string
	GenerationTimeout time.Duration
	Temperature       float64
	MaxTokens         int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "anthropic")),
		ModelName:       getEnv("MODEL_NAME", ""),
		ImageModelName:  getEnv("IMAGE_MODEL_NAME", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		VeniceAPIKey:    getEnv("VENICE_API_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),
		CatalogPath:     getEnv("CATALOG_PATH", ""),
		ContentRating:   getEnv("CONTENT_RATING", "PG-13"),
	}

	var err error
	if cfg.SessionTTL, err = parseDuration("SESSION_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.GenerationTimeout, err = parseDuration("GENERATION_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Temperature, err = strconv.ParseFloat(getEnv("TEMPERATURE", "0.9"), 64); err != nil {
		return nil, fmt.Errorf("invalid TEMPERATURE: %w", err)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return nil, fmt.Errorf("invalid TEMPERATURE: %v is outside 0-2", cfg.Temperature)
	}
	if cfg.MaxTokens, err = strconv.Atoi(getEnv("MAX_TOKENS", "1024")); err != nil {
		return nil, fmt.Errorf("invalid MAX_TOKENS: %w", err)
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("invalid MAX_TOKENS: must be positive")
	}
	return cfg, nil
}

// APIKey returns the API key for the configured provider.
func (c *Config) APIKey() string {
	switch c.LLMProvider {
	case "anthropic":
		return c.AnthropicAPIKey
	case "openai", "chatgpt":
		return c.OpenAIAPIKey
	case "venice":
		return c.VeniceAPIKey
	case "gemini":
		return c.GeminiAPIKey
	}
	return ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
