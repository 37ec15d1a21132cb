// Package entity defines the core domain objects for order-intent extraction.
// It contains the Entity, CartItem, and ExtractionResult value objects along with
// their validation rules and domain-specific errors. All objects are request-scoped:
// they are created while one message is being processed and discarded afterwards.
package entity

import "fmt"

// Label classifies what an extracted text span refers to.
type Label string

// Entity labels recognized by the tagger and the LLM extractor.
const (
	LabelFood  Label = "FOOD"
	LabelStore Label = "STORE"
	LabelQty   Label = "QTY"
	LabelLoc   Label = "LOC"
	LabelPref  Label = "PREF"
)

// KnownLabels lists every label the pipeline understands, in a stable order.
var KnownLabels = []Label{LabelFood, LabelStore, LabelQty, LabelLoc, LabelPref}

// IsKnownLabel reports whether l is one of the labels the pipeline understands.
func IsKnownLabel(l Label) bool {
	switch l {
	case LabelFood, LabelStore, LabelQty, LabelLoc, LabelPref:
		return true
	}
	return false
}

// Entity is a typed character span extracted from the user's message.
// Start and End are half-open rune-agnostic byte offsets into the source text:
// 0 <= Start < End <= len(text). A degenerate (0,0) span marks an entity whose
// text could not be located in the source; it is kept for keyword evidence but
// never participates in cart resolution.
type Entity struct {
	Text       string  `json:"text"`
	Label      Label   `json:"label"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Degenerate reports whether the entity carries a placeholder (0,0) span.
func (e Entity) Degenerate() bool {
	return e.Start == 0 && e.End == 0
}

// Validate checks the structural invariants of the entity against the source
// text it was extracted from. Degenerate spans are structurally valid.
func (e Entity) Validate(sourceLen int) error {
	if e.Text == "" {
		return &ValidationError{Field: "text", Message: "entity text is required"}
	}
	if !IsKnownLabel(e.Label) {
		return &ValidationError{Field: "label", Message: fmt.Sprintf("unknown label %q", e.Label)}
	}
	if e.Degenerate() {
		return nil
	}
	if e.Start < 0 || e.Start >= e.End || e.End > sourceLen {
		return &ValidationError{
			Field:   "span",
			Message: fmt.Sprintf("span [%d,%d) is invalid for text of length %d", e.Start, e.End, sourceLen),
		}
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return &ValidationError{Field: "confidence", Message: "confidence must be within [0,1]"}
	}
	return nil
}
