package entity

// Well-known intent labels produced by the classifier and the LLM extractor.
// The set is open ended (new flows add new labels); these are the ones the
// pipeline itself has policy for.
const (
	IntentOrderFood    = "order_food"
	IntentOrderGrocery = "order_grocery"
	IntentCreateParcel = "create_parcel_order"
	IntentUnknown      = "unknown"
)

// ExtractionPath names which branch of the extraction pipeline produced a
// result. It is recorded on the result so tests and metrics can target each
// branch directly instead of inferring it from side effects.
type ExtractionPath string

const (
	// PathPrimary means the LLM extractor answered with parseable output.
	PathPrimary ExtractionPath = "PRIMARY"
	// PathFallback means the classifier+tagger pair produced the result.
	PathFallback ExtractionPath = "FALLBACK"
	// PathFailed means both branches failed and the degraded default was returned.
	PathFailed ExtractionPath = "FAILED"
)

// ExtractionResult is the single structured output of the pipeline for one
// message. It is constructed once, after all resolution steps, and not mutated
// afterwards. Callers always receive a well-formed result: total pipeline
// failure yields intent "unknown" with confidence 0.5 and empty slices, never
// an error.
type ExtractionResult struct {
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Entities   []Entity       `json:"entities"`
	CartItems  []CartItem     `json:"cart_items"`
	RawText    string         `json:"raw_text"`
	Path       ExtractionPath `json:"path"`
}

// FailedResult returns the degraded-but-valid result used when every
// extraction branch has failed for the given text.
func FailedResult(rawText string) *ExtractionResult {
	return &ExtractionResult{
		Intent:     IntentUnknown,
		Confidence: 0.5,
		Entities:   []Entity{},
		CartItems:  []CartItem{},
		RawText:    rawText,
		Path:       PathFailed,
	}
}
