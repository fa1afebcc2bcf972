// ABOUTME: Process configuration loaded from environment variables, including the schema/metrics/log-level settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every environment-driven setting the binary needs at
// startup. There is no config file; every field comes from an env var,
// with the defaults this package applies when a variable is unset.
type Config struct {
	LLMAPIEndpoint     string        // LLM_API_ENDPOINT, required
	LLMAPIKey          string        // LLM_API_KEY, required
	LLMModelName       string        // LLM_MODEL_NAME, default "default"
	LLMRequestTimeout  time.Duration // LLM_REQUEST_TIMEOUT_SEC, default 300s
	SessionTimeout     time.Duration // SESSION_TIMEOUT_SEC, default 1800s
	CORSAllowedOrigins []string      // CORS_ALLOWED_ORIGINS, default ["*"]
	BackendHost        string        // BACKEND_HOST, default "0.0.0.0"
	BackendPort        string        // BACKEND_PORT, default "8000"
	FormSchemasDir     string        // FORM_SCHEMAS_DIR, default "./schemas"
	MetricsEnabled     bool          // METRICS_ENABLED, default true
	LogLevel           string        // LOG_LEVEL, one of debug/info/warn/error, default "info"
}

// ErrMissingLLMEndpoint and ErrMissingLLMKey are returned by FromEnv when a
// required variable is unset — the process has no usable LLM connector
// without them.
var (
	ErrMissingLLMEndpoint = fmt.Errorf("config: LLM_API_ENDPOINT is required")
	ErrMissingLLMKey      = fmt.Errorf("config: LLM_API_KEY is required")
)

// validLogLevels is the closed set LOG_LEVEL must belong to.
var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Addr returns the bind address as host:port.
func (c Config) Addr() string {
	return c.BackendHost + ":" + c.BackendPort
}

// FromEnv loads a Config from the process environment, applying every
// default configuration contract names, and validating the
// two required LLM variables plus LOG_LEVEL's closed set.
func FromEnv() (Config, error) {
	endpoint := os.Getenv("LLM_API_ENDPOINT")
	if endpoint == "" {
		return Config{}, ErrMissingLLMEndpoint
	}
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return Config{}, ErrMissingLLMKey
	}

	timeoutSec, err := envIntOrDefault("LLM_REQUEST_TIMEOUT_SEC", 300)
	if err != nil {
		return Config{}, err
	}
	sessionTimeoutSec, err := envIntOrDefault("SESSION_TIMEOUT_SEC", 1800)
	if err != nil {
		return Config{}, err
	}

	logLevel := envOrDefault("LOG_LEVEL", "info")
	if !validLogLevels[logLevel] {
		return Config{}, fmt.Errorf("config: LOG_LEVEL %q must be one of debug, info, warn, error", logLevel)
	}

	return Config{
		LLMAPIEndpoint:     endpoint,
		LLMAPIKey:          apiKey,
		LLMModelName:       envOrDefault("LLM_MODEL_NAME", "default"),
		LLMRequestTimeout:  time.Duration(timeoutSec) * time.Second,
		SessionTimeout:     time.Duration(sessionTimeoutSec) * time.Second,
		CORSAllowedOrigins: splitOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		BackendHost:        envOrDefault("BACKEND_HOST", "0.0.0.0"),
		BackendPort:        envOrDefault("BACKEND_PORT", "8000"),
		FormSchemasDir:     envOrDefault("FORM_SCHEMAS_DIR", "./schemas"),
		MetricsEnabled:     envBoolOrDefault("METRICS_ENABLED", true),
		LogLevel:           logLevel,
	}, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, v, err)
	}
	return n, nil
}

func envBoolOrDefault(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1" || v == "yes"
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
