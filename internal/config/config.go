// package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// storage
	DatabaseURL   string
	WatermarkFile string
	MediaDir      string

	// nats
	NatsURL string

	// llm
	LLMBaseURL     string
	LLMModel       string
	LLMAPIKey      string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeoutSec  int

	// telegram
	TGApiID   int
	TGApiHash string

	// collection
	ChannelsFile  string
	FetchLimit    int
	FallbackHours int

	// scheduling
	CollectionInterval time.Duration
	CleanupInterval    time.Duration

	// server
	HTTPPort int

	// logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", "./data/aggregator.db"),
		WatermarkFile:      getEnv("WATERMARK_FILE", "./data/watermarks.json"),
		MediaDir:           getEnv("MEDIA_DIR", "./media"),
		NatsURL:            getEnv("NATS_URL", ""),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:           getEnv("LLM_MODEL", "gpt-4o"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		LLMMaxTokens:       getEnvInt("LLM_MAX_TOKENS", 1000),
		LLMTimeoutSec:      getEnvInt("LLM_TIMEOUT_SECONDS", 120),
		TGApiID:            getEnvInt("TG_API_ID", 0),
		TGApiHash:          getEnv("TG_API_HASH", ""),
		ChannelsFile:       getEnv("CHANNELS_FILE", "./channels.yaml"),
		FetchLimit:         getEnvInt("FETCH_LIMIT", 80),
		FallbackHours:      getEnvInt("FALLBACK_HOURS", 24),
		CollectionInterval: getEnvDuration("COLLECTION_INTERVAL", time.Hour),
		CleanupInterval:    getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour),
		HTTPPort:           getEnvInt("HTTP_PORT", 3100),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", "./logs/app.log"),
	}

	cfg.LLMTemperature = getEnvFloat("LLM_TEMPERATURE", 0.1)

	if cfg.FetchLimit <= 0 {
		return nil, fmt.Errorf("FETCH_LIMIT must be positive, got %d", cfg.FetchLimit)
	}
	if cfg.FallbackHours <= 0 {
		return nil, fmt.Errorf("FALLBACK_HOURS must be positive, got %d", cfg.FallbackHours)
	}

	return cfg, nil
}

// FallbackWindow returns the fallback lookback window as a duration.
func (c *Config) FallbackWindow() time.Duration {
	return time.Duration(c.FallbackHours) * time.Hour
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getEnvDuration parses durations like "1h" or "30m" from the environment.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}
