// Package config holds service-level configuration loaded from environment
// variables. Provider-specific settings live next to their clients under
// internal/infra; this package covers the HTTP surface shared by the binaries.
package config

import (
	"fmt"
	"time"

	"mangwale-nlu/pkg/config"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// Port is the listen port for the API server.
	// Default: 8080
	Port int

	// ReadHeaderTimeout bounds how long header parsing may take.
	// Default: 10 seconds
	ReadHeaderTimeout time.Duration

	// RequestTimeout is the per-request deadline applied by middleware.
	// Default: 15 seconds
	RequestTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	// Default: 5 seconds
	ShutdownTimeout time.Duration

	// MaxBodyBytes caps the request body size.
	// Default: 1 MiB
	MaxBodyBytes int64

	// RateLimit is the per-IP request budget within RateWindow.
	// Default: 120
	RateLimit int

	// RateWindow is the sliding window for the per-IP limiter.
	// Default: 1 minute
	RateWindow time.Duration

	// IntentRulesPath optionally points to a YAML rule file overriding the
	// compiled-in disambiguation tables. Empty means defaults.
	IntentRulesPath string

	// Version is reported by the health endpoint.
	// Default: "dev"
	Version string
}

// LoadServerConfig loads server configuration from environment variables.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{
		Port:              config.GetEnvInt("PORT", 8080),
		ReadHeaderTimeout: config.GetEnvDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		RequestTimeout:    config.GetEnvDuration("SERVER_REQUEST_TIMEOUT", 15*time.Second),
		ShutdownTimeout:   config.GetEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		MaxBodyBytes:      int64(config.GetEnvInt("SERVER_MAX_BODY_BYTES", 1<<20)),
		RateLimit:         config.GetEnvInt("SERVER_RATE_LIMIT", 120),
		RateWindow:        config.GetEnvDuration("SERVER_RATE_WINDOW", time.Minute),
		IntentRulesPath:   config.GetEnvString("INTENT_RULES_PATH", ""),
		Version:           config.GetEnvString("VERSION", "dev"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration consistency.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if err := config.ValidatePositiveDuration(c.ReadHeaderTimeout); err != nil {
		return fmt.Errorf("SERVER_READ_HEADER_TIMEOUT: %w", err)
	}
	if err := config.ValidatePositiveDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("SERVER_REQUEST_TIMEOUT: %w", err)
	}
	if err := config.ValidatePositiveDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT: %w", err)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("SERVER_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("SERVER_RATE_LIMIT must be positive, got %d", c.RateLimit)
	}
	if err := config.ValidatePositiveDuration(c.RateWindow); err != nil {
		return fmt.Errorf("SERVER_RATE_WINDOW: %w", err)
	}
	return nil
}
