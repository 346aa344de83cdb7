// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all engine configuration.
type Config struct {
	// Stage executor settings.
	MaxAttempts    int           // attempts per stage call, including the first
	BackoffBase    float64       // retry delay grows as BackoffBase^attempt
	BackoffUnit    time.Duration // unit multiplied into the backoff power
	AttemptTimeout time.Duration // wall-clock budget per attempt

	// Generative text settings.
	OpenAIAPIKey    string
	TextModel       string
	TextBaseURL     string
	InputCostPer1K  float64 // USD per 1K prompt tokens
	OutputCostPer1K float64 // USD per 1K completion tokens

	// Deployment settings.
	DeployConcurrency int // max concurrent channel deployments

	// Analytics scheduling.
	AnalyticsDelayHours int
	AnalyticsTimeout    time.Duration

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		MaxAttempts:         envInt("UNEWS_MAX_ATTEMPTS", 3),
		BackoffBase:         envFloat("UNEWS_BACKOFF_BASE", 2.0),
		BackoffUnit:         envDuration("UNEWS_BACKOFF_UNIT", time.Second),
		AttemptTimeout:      envDuration("UNEWS_ATTEMPT_TIMEOUT", 2*time.Minute),
		OpenAIAPIKey:        envStr("OPENAI_API_KEY", ""),
		TextModel:           envStr("UNEWS_TEXT_MODEL", "gpt-4o-mini"),
		TextBaseURL:         envStr("UNEWS_TEXT_BASE_URL", "https://api.openai.com/v1"),
		InputCostPer1K:      envFloat("UNEWS_INPUT_COST_PER_1K", 0.01),
		OutputCostPer1K:     envFloat("UNEWS_OUTPUT_COST_PER_1K", 0.03),
		DeployConcurrency:   envInt("UNEWS_DEPLOY_CONCURRENCY", 5),
		AnalyticsDelayHours: envInt("UNEWS_ANALYTICS_DELAY_HOURS", 24),
		AnalyticsTimeout:    envDuration("UNEWS_ANALYTICS_TIMEOUT", 10*time.Second),
		OTELEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:        envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:         envStr("OTEL_SERVICE_NAME", "universalnews"),
		LogLevel:            envStr("UNEWS_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that configuration values are usable.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("config: UNEWS_MAX_ATTEMPTS must be at least 1")
	}
	if c.BackoffBase < 1 {
		return fmt.Errorf("config: UNEWS_BACKOFF_BASE must be >= 1")
	}
	if c.BackoffUnit <= 0 {
		return fmt.Errorf("config: UNEWS_BACKOFF_UNIT must be positive")
	}
	if c.AttemptTimeout <= 0 {
		return fmt.Errorf("config: UNEWS_ATTEMPT_TIMEOUT must be positive")
	}
	if c.DeployConcurrency < 1 {
		return fmt.Errorf("config: UNEWS_DEPLOY_CONCURRENCY must be at least 1")
	}
	if c.InputCostPer1K < 0 || c.OutputCostPer1K < 0 {
		return fmt.Errorf("config: token costs must be >= 0")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
