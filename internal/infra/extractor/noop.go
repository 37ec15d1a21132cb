package extractor

import (
	"context"
	"fmt"

	"mangwale-nlu/internal/usecase/extract"
)

// NoOp is an extractor that always fails, forcing the fallback path.
// Useful in development and tests when no LLM credentials are configured.
type NoOp struct{}

// NewNoOp creates a new NoOp extractor.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Extract always returns an error so the orchestrator falls back to the
// classifier+tagger pair.
func (n *NoOp) Extract(_ context.Context, _ string) (*extract.ExtractorOutput, error) {
	return nil, fmt.Errorf("noop extractor: no llm provider configured")
}
