package extractor_test

import (
	"context"
	"os"
	"testing"
	"time"

	"mangwale-nlu/internal/infra/extractor"
)

func clearExtractorEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EXTRACTOR_PROVIDER",
		"EXTRACTOR_MODEL",
		"EXTRACTOR_MAX_TOKENS",
		"EXTRACTOR_TIMEOUT",
		"EXTRACTOR_RATE_PER_SECOND",
		"EXTRACTOR_RATE_BURST",
		"ANTHROPIC_API_KEY",
		"OPENAI_API_KEY",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearExtractorEnv(t)

	cfg, err := extractor.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Provider != extractor.ProviderClaude {
		t.Errorf("Provider = %q, want claude", cfg.Provider)
	}
	if cfg.MaxTokens != 1024 {
		t.Errorf("MaxTokens = %d, want 1024", cfg.MaxTokens)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestLoadConfig_CustomValues(t *testing.T) {
	clearExtractorEnv(t)
	t.Setenv("EXTRACTOR_PROVIDER", "openai")
	t.Setenv("EXTRACTOR_MODEL", "gpt-4o")
	t.Setenv("EXTRACTOR_TIMEOUT", "10s")

	cfg, err := extractor.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Provider != extractor.ProviderOpenAI {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", cfg.Model)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
}

func TestLoadConfig_UnknownProvider(t *testing.T) {
	clearExtractorEnv(t)
	t.Setenv("EXTRACTOR_PROVIDER", "gemini")

	if _, err := extractor.LoadConfig(); err == nil {
		t.Error("LoadConfig() expected error for unknown provider, got nil")
	}
}

func TestNewFromConfig_MissingAPIKey(t *testing.T) {
	clearExtractorEnv(t)

	for _, provider := range []string{extractor.ProviderClaude, extractor.ProviderOpenAI} {
		t.Run(provider, func(t *testing.T) {
			cfg := &extractor.Config{
				Provider:      provider,
				MaxTokens:     1024,
				Timeout:       10 * time.Second,
				RatePerSecond: 5,
				RateBurst:     10,
			}
			if _, err := extractor.NewFromConfig(cfg); err == nil {
				t.Error("NewFromConfig() expected error without api key, got nil")
			}
		})
	}
}

func TestNewFromConfig_Noop(t *testing.T) {
	clearExtractorEnv(t)

	cfg := &extractor.Config{
		Provider:      extractor.ProviderNoop,
		MaxTokens:     1024,
		Timeout:       10 * time.Second,
		RatePerSecond: 5,
		RateBurst:     10,
	}
	ex, err := extractor.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}

	if _, err := ex.Extract(context.Background(), "do samosa mangwao"); err == nil {
		t.Error("NoOp Extract() expected error to force fallback, got nil")
	}
}
