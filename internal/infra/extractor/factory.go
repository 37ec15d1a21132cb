package extractor

import (
	"fmt"
	"os"

	"mangwale-nlu/internal/usecase/extract"
)

// NewFromConfig builds the extractor named by cfg.Provider, reading the
// matching API key from the environment. "noop" needs no key and always
// forces the fallback path.
func NewFromConfig(cfg *Config) (extract.Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extractor config: %w", err)
	}

	switch cfg.Provider {
	case ProviderClaude:
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when EXTRACTOR_PROVIDER=claude")
		}
		return NewClaude(apiKey, cfg), nil
	case ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when EXTRACTOR_PROVIDER=openai")
		}
		return NewOpenAI(apiKey, cfg), nil
	case ProviderNoop:
		return NewNoOp(), nil
	default:
		return nil, fmt.Errorf("unknown extractor provider %q", cfg.Provider)
	}
}
