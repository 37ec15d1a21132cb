package extractor

import (
	"fmt"
	"time"

	"mangwale-nlu/pkg/config"
)

// Provider names accepted by NewFromConfig.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderNoop   = "noop"
)

// Config holds configuration parameters shared by the LLM extractor adapters.
// Configuration is loaded from environment variables with fallback to defaults.
type Config struct {
	// Provider selects the adapter: "claude", "openai", or "noop".
	Provider string

	// Model is the provider-specific model identifier. Empty selects the
	// adapter's default.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single extraction API call.
	// The LLM is the slow path; the classifier+tagger fallback carries much
	// shorter timeouts.
	Timeout time.Duration

	// RatePerSecond throttles outbound LLM calls across all requests.
	RatePerSecond float64

	// RateBurst is the rate limiter burst size.
	RateBurst int
}

// LoadConfig loads extractor configuration from environment variables.
//
// Environment variables:
//   - EXTRACTOR_PROVIDER: "claude", "openai", or "noop" (default: "claude")
//   - EXTRACTOR_MODEL: model identifier override (default: adapter default)
//   - EXTRACTOR_MAX_TOKENS: response token cap (default: 1024)
//   - EXTRACTOR_TIMEOUT: per-call timeout (default: 30s)
//   - EXTRACTOR_RATE_PER_SECOND: outbound call rate (default: 5)
//   - EXTRACTOR_RATE_BURST: rate limiter burst (default: 10)
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Provider:      config.GetEnvString("EXTRACTOR_PROVIDER", ProviderClaude),
		Model:         config.GetEnvString("EXTRACTOR_MODEL", ""),
		MaxTokens:     config.GetEnvInt("EXTRACTOR_MAX_TOKENS", 1024),
		Timeout:       config.GetEnvDuration("EXTRACTOR_TIMEOUT", 30*time.Second),
		RatePerSecond: float64(config.GetEnvInt("EXTRACTOR_RATE_PER_SECOND", 5)),
		RateBurst:     config.GetEnvInt("EXTRACTOR_RATE_BURST", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extractor configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks all configuration fields for validity.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderClaude, ProviderOpenAI, ProviderNoop:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.RatePerSecond <= 0 {
		return fmt.Errorf("rate per second must be positive, got %v", c.RatePerSecond)
	}
	if c.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be positive, got %d", c.RateBurst)
	}
	return nil
}
