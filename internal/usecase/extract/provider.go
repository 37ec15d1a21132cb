package extract

import (
	"context"

	"mangwale-nlu/internal/domain/entity"
)

// Extractor is the primary-path provider: a general-purpose LLM prompted to
// return the full structured intent in one shot. Implementations own their
// wire format and defensive parsing; by the time an ExtractorOutput comes
// back, it is validated and entity spans are either real or degenerate (0,0).
type Extractor interface {
	Extract(ctx context.Context, text string) (*ExtractorOutput, error)
}

// Classifier is the fallback-path intent predictor.
type Classifier interface {
	Classify(ctx context.Context, text string) (*IntentPrediction, error)
}

// Tagger is the fallback-path sequence labeler. It returns one tagged token
// per input token with character offsets aligned to the source text.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]TaggedToken, error)
}

// ExtractorOutput is the validated result of one LLM extraction call.
// CartItems is nil when the model did not propose a cart itself, in which
// case the orchestrator derives one from the entities.
type ExtractorOutput struct {
	Intent     string
	Confidence float64
	Entities   []entity.Entity
	CartItems  []entity.CartItem
}

// IntentPrediction is the classifier's (label, confidence) output.
type IntentPrediction struct {
	Intent     string
	Confidence float64
}

// TaggedToken is one token of the tagger's B/I/O output.
// Score carries the per-token label probability when the tagger reports one;
// zero means probabilities are unavailable.
type TaggedToken struct {
	Token     string
	Tag       string
	CharStart int
	CharEnd   int
	Score     float64
}
