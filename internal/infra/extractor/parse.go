package extractor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"mangwale-nlu/internal/domain/entity"
	"mangwale-nlu/internal/usecase/extract"
)

// wireResult mirrors the JSON object the instruction contract asks for.
// Every field is treated as untrusted until parseResponse has validated it.
type wireResult struct {
	Intent     string         `json:"intent"`
	Confidence *float64       `json:"confidence"`
	Entities   []wireEntity   `json:"entities"`
	CartItems  []wireCartItem `json:"cart_items"`
}

type wireEntity struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Start      *int    `json:"start"`
	End        *int    `json:"end"`
	Confidence float64 `json:"confidence"`
}

type wireCartItem struct {
	Food  string `json:"food"`
	Qty   int    `json:"qty"`
	Store string `json:"store"`
}

// parseResponse is the defensive parsing stage between a raw LLM reply and a
// validated ExtractorOutput. Models routinely wrap JSON in prose or markdown
// fences, so recovery is part of the contract, not a special case:
//  1. strip markdown code fences,
//  2. take the substring between the first '{' and the last '}',
//  3. unmarshal and validate field presence and ranges,
//  4. recover missing or invalid entity spans by case-insensitive substring
//     search in sourceText, degrading to a (0,0) span when the text cannot
//     be located.
//
// An error from parseResponse means the reply is unusable and the caller
// should fall back; a nil error means every retained field is valid. The
// second return value counts entity spans that had to be recovered by
// substring search, for the provider's metrics.
func parseResponse(raw, sourceText string) (*extract.ExtractorOutput, int, error) {
	payload, err := extractJSONObject(raw)
	if err != nil {
		return nil, 0, err
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return nil, 0, fmt.Errorf("llm response is not valid json: %w", err)
	}

	if strings.TrimSpace(wire.Intent) == "" {
		return nil, 0, fmt.Errorf("llm response missing intent")
	}
	if wire.Confidence == nil {
		return nil, 0, fmt.Errorf("llm response missing confidence")
	}
	confidence := *wire.Confidence
	if confidence < 0 || confidence > 1 {
		return nil, 0, fmt.Errorf("llm confidence %v outside [0,1]", confidence)
	}

	out := &extract.ExtractorOutput{
		Intent:     strings.TrimSpace(wire.Intent),
		Confidence: confidence,
		Entities:   make([]entity.Entity, 0, len(wire.Entities)),
	}

	recovered := 0
	for _, we := range wire.Entities {
		e, wasRecovered, ok := convertEntity(we, sourceText)
		if !ok {
			slog.Warn("dropping malformed llm entity",
				slog.String("text", we.Text),
				slog.String("label", we.Label))
			continue
		}
		if wasRecovered {
			recovered++
		}
		out.Entities = append(out.Entities, e)
	}

	// A cart the model proposed itself takes precedence over positional
	// resolution, but only items that survive validation are kept. An
	// entirely invalid cart degrades to nil so the caller derives one.
	if len(wire.CartItems) > 0 {
		items := make([]entity.CartItem, 0, len(wire.CartItems))
		for _, wc := range wire.CartItems {
			item := entity.CartItem{Food: strings.TrimSpace(wc.Food), Qty: wc.Qty, Store: strings.TrimSpace(wc.Store)}
			// A missing or nonsensical quantity means one of the item, the
			// same default the positional resolver uses. Only a missing food
			// name drops the item.
			if item.Qty < 1 {
				slog.Warn("llm cart item missing quantity, defaulting to 1",
					slog.String("food", wc.Food),
					slog.Int("qty", wc.Qty))
				item.Qty = 1
			}
			if err := item.Validate(); err != nil {
				slog.Warn("dropping malformed llm cart item",
					slog.String("food", wc.Food),
					slog.Int("qty", wc.Qty),
					slog.String("error", err.Error()))
				continue
			}
			items = append(items, item)
		}
		if len(items) > 0 {
			out.CartItems = items
		}
	}

	return out, recovered, nil
}

// extractJSONObject strips markdown fences and returns the substring between
// the first '{' and the last '}'.
func extractJSONObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	// Fenced blocks: ```json ... ``` or plain ``` ... ```.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no json object found in llm response")
	}
	return s[start : end+1], nil
}

// convertEntity validates one wire entity and recovers its span when the
// model omitted offsets or produced ones that do not fit the source text.
// Unlocatable text keeps the entity with a degenerate (0,0) span: it still
// counts as keyword evidence but is excluded from cart building.
func convertEntity(we wireEntity, sourceText string) (e entity.Entity, recovered, ok bool) {
	text := strings.TrimSpace(we.Text)
	if text == "" {
		return entity.Entity{}, false, false
	}
	label := entity.Label(strings.ToUpper(strings.TrimSpace(we.Label)))
	if !entity.IsKnownLabel(label) {
		return entity.Entity{}, false, false
	}

	confidence := we.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 1.0
	}

	e = entity.Entity{Text: text, Label: label, Confidence: confidence}
	if we.Start != nil && we.End != nil {
		e.Start, e.End = *we.Start, *we.End
	}
	if e.Validate(len(sourceText)) == nil && !e.Degenerate() {
		return e, false, true
	}

	// Offsets missing or unusable: locate the text case-insensitively.
	if idx := strings.Index(strings.ToLower(sourceText), strings.ToLower(text)); idx >= 0 {
		e.Start, e.End = idx, idx+len(text)
	} else {
		e.Start, e.End = 0, 0
	}
	return e, true, true
}
