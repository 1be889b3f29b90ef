// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	DBPath         string
	AllowedOrigins []string
	JWTSecret      string
	TokenTTL       time.Duration
	AI             AIConfig
}

// AIConfig controls the upstream completion gateway.
type AIConfig struct {
	APIURL         string
	APIKey         string
	Model          string
	Temperature    float64
	MaxTokens      int
	RequestTimeout time.Duration

	// Local admission control over the shared upstream credential.
	RateLimitPerWindow int
	RateLimitWindow    time.Duration

	// Exponential backoff for retryable upstream failures.
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBPath:         getEnv("DB_PATH", "./data/interviewd.db"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTL:       getEnvDuration("TOKEN_TTL", 24*time.Hour),
		AI: AIConfig{
			APIURL:             getEnv("OPENROUTER_API_URL", "https://openrouter.ai/api/v1/chat/completions"),
			APIKey:             getEnv("OPENROUTER_API_KEY", ""),
			Model:              getEnv("DEFAULT_MODEL", "openai/gpt-4o-mini"),
			Temperature:        getEnvFloat("DEFAULT_TEMPERATURE", 0.7),
			MaxTokens:          getEnvInt("DEFAULT_MAX_TOKENS", 300),
			RequestTimeout:     getEnvDuration("AI_REQUEST_TIMEOUT", 30*time.Second),
			RateLimitPerWindow: getEnvInt("AI_RATE_LIMIT", 10),
			RateLimitWindow:    time.Minute,
			MaxRetries:         getEnvInt("AI_MAX_RETRIES", 3),
			BaseDelay:          time.Second,
			MaxDelay:           60 * time.Second,
			BackoffFactor:      2.0,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
// The upstream API key is deliberately not required here: its absence
// is surfaced as a configuration error at call time so the rest of the
// server stays usable.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.AI.APIURL == "" {
		return fmt.Errorf("OPENROUTER_API_URL cannot be empty")
	}
	if c.AI.RateLimitPerWindow <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT must be > 0")
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("AI_MAX_RETRIES cannot be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
