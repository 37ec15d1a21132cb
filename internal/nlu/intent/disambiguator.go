package intent

import (
	"log/slog"
	"strings"

	"mangwale-nlu/internal/domain/entity"
)

// overridePenalty is applied to the confidence whenever a rule flips the
// model's intent. A rule-based override must never report higher confidence
// than the model's own signal implied.
const overridePenalty = 0.9

// Disambiguator reconciles a tentative model intent with keyword evidence
// from the raw text. It holds no mutable state and is safe for concurrent use.
type Disambiguator struct {
	rules Rules
}

// New creates a Disambiguator with the given rule tables. Keywords are
// matched case-insensitively; the tables are normalized once here.
func New(rules Rules) *Disambiguator {
	return &Disambiguator{rules: Rules{
		FoodKeywords:      lowerAll(rules.FoodKeywords),
		ParcelKeywords:    lowerAll(rules.ParcelKeywords),
		MakingFoodPhrases: lowerAll(rules.MakingFoodPhrases),
	}}
}

// Reconcile returns a possibly-overridden (intent, confidence) pair.
//
// Override rule: a parcel prediction flips to food when the text carries
// ready-to-eat evidence and no parcel evidence, and symmetrically the other
// way. When both or neither set matches, the prediction passes through
// unchanged; ambiguity is deferred to the downstream clarification step.
//
// After the two-set override, the separate making-food rule turns a food
// intent into a grocery intent when "making food" phrasing is present.
// Every flip multiplies the confidence by 0.9.
func (d *Disambiguator) Reconcile(text, tentativeIntent string, tentativeConfidence float64) (string, float64) {
	lower := strings.ToLower(text)

	intent := tentativeIntent
	confidence := tentativeConfidence

	food := d.anyKeyword(lower, d.rules.FoodKeywords)
	parcel := d.anyKeyword(lower, d.rules.ParcelKeywords)

	switch {
	case intent == entity.IntentCreateParcel && food && !parcel:
		intent = entity.IntentOrderFood
		confidence *= overridePenalty
	case intent == entity.IntentOrderFood && parcel && !food:
		intent = entity.IntentCreateParcel
		confidence *= overridePenalty
	}

	if intent == entity.IntentOrderFood && d.anyKeyword(lower, d.rules.MakingFoodPhrases) {
		intent = entity.IntentOrderGrocery
		confidence *= overridePenalty
	}

	if intent != tentativeIntent {
		slog.Debug("intent overridden by keyword evidence",
			slog.String("from", tentativeIntent),
			slog.String("to", intent),
			slog.Float64("confidence", confidence))
	}

	return intent, confidence
}

// anyKeyword reports whether any keyword occurs in the text on a word
// boundary. Keywords may contain spaces ("vada pav", "banana hai").
func (d *Disambiguator) anyKeyword(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if containsWord(lower, kw) {
			return true
		}
	}
	return false
}

// containsWord is a boundary-aware substring match: "das" must not match
// inside "dastavez", but multi-word phrases still match across spaces.
func containsWord(text, word string) bool {
	for from := 0; ; {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return false
		}
		i += from

		before := i == 0 || isBoundary(text[i-1])
		afterIdx := i + len(word)
		after := afterIdx == len(text) || isBoundary(text[afterIdx])
		if before && after {
			return true
		}
		from = i + 1
	}
}

func isBoundary(b byte) bool {
	return !(b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9')
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
