package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ent0n29/callbridge/internal/agent"
)

// Config contains all runtime settings for the call bridge. It is built once
// by Load and treated as read-only afterwards.
type Config struct {
	BindAddr             string
	ShutdownTimeout      time.Duration
	SessionCreateTimeout time.Duration
	MetricsNamespace     string

	LogLevel        string
	LogFormat       string
	LogRedactCaller bool

	UltravoxAPIKey string
	UltravoxAPIURL string

	// Agent is the base script plus fixed provider parameters.
	Agent      agent.Profile
	StreamName string

	WebhookRateLimit float64
	WebhookRateBurst int

	// TrustProxyHeaders lets X-Forwarded-For / X-Real-IP replace the peer
	// address. Only enable it behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

var ErrMissingAPIKey = errors.New("ULTRAVOX_API_KEY environment variable not set")

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:             envOrDefault("APP_BIND_ADDR", ":"+envOrDefault("PORT", "3000")),
		MetricsNamespace:     envOrDefault("APP_METRICS_NAMESPACE", "callbridge"),
		LogLevel:             envOrDefault("LOG_LEVEL", "info"),
		LogFormat:            envOrDefault("LOG_FORMAT", "json"),
		UltravoxAPIKey:       stringsTrimSpace("ULTRAVOX_API_KEY"),
		UltravoxAPIURL:       envOrDefault("ULTRAVOX_API_URL", "https://api.ultravox.ai/api/calls"),
		StreamName:           envOrDefault("STREAM_NAME", "Ultravox Stream"),
		ShutdownTimeout:      15 * time.Second,
		SessionCreateTimeout: 10 * time.Second,
		WebhookRateLimit:     20,
		WebhookRateBurst:     40,
	}
	if cfg.UltravoxAPIKey == "" {
		return Config{}, ErrMissingAPIKey
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionCreateTimeout, err = durationFromEnv("SESSION_CREATE_TIMEOUT", cfg.SessionCreateTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.LogRedactCaller, err = boolFromEnv("LOG_REDACT_CALLER", false)
	if err != nil {
		return Config{}, err
	}
	cfg.TrustProxyHeaders, err = boolFromEnv("TRUST_PROXY_HEADERS", false)
	if err != nil {
		return Config{}, err
	}
	cfg.WebhookRateLimit, err = floatFromEnv("WEBHOOK_RATE_LIMIT", cfg.WebhookRateLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.WebhookRateBurst, err = intFromEnv("WEBHOOK_RATE_BURST", cfg.WebhookRateBurst)
	if err != nil {
		return Config{}, err
	}

	cfg.Agent = agent.DefaultProfile()
	if path := stringsTrimSpace("AGENT_PROFILE_PATH"); path != "" {
		cfg.Agent, err = agent.LoadProfile(path)
		if err != nil {
			return Config{}, err
		}
	}
	if v := stringsTrimSpace("ULTRAVOX_MODEL"); v != "" {
		cfg.Agent.Model = v
	}
	if v := stringsTrimSpace("ULTRAVOX_VOICE"); v != "" {
		cfg.Agent.Voice = v
	}
	cfg.Agent.Temperature, err = floatFromEnv("ULTRAVOX_TEMPERATURE", cfg.Agent.Temperature)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionCreateTimeout <= 0 {
		return Config{}, fmt.Errorf("SESSION_CREATE_TIMEOUT must be positive")
	}
	if cfg.WebhookRateLimit < 0 {
		return Config{}, fmt.Errorf("WEBHOOK_RATE_LIMIT must be >= 0")
	}
	if cfg.WebhookRateLimit > 0 && cfg.WebhookRateBurst <= 0 {
		return Config{}, fmt.Errorf("WEBHOOK_RATE_BURST must be positive when rate limiting is enabled")
	}
	if err := cfg.Agent.Validate(); err != nil {
		return Config{}, fmt.Errorf("agent profile: %w", err)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
