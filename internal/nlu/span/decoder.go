// Package span decodes per-token B/I/O tag sequences from the token tagger
// into typed character-span entities. Real model output is not guaranteed to be
// well-formed, so the decoder recovers from inconsistent tag sequences instead
// of rejecting them.
package span

import (
	"strings"

	"mangwale-nlu/internal/domain/entity"
)

// Tag values with special meaning in the tagger's output.
const (
	// TagOutside marks a token that belongs to no entity span.
	TagOutside = "O"
	// TagPadding is the sentinel carried by special/padding tokens
	// ([CLS]/[SEP]-style). Such tokens are excluded from decoding entirely.
	TagPadding = "PAD"
)

// Token is one tagger token aligned with its character offsets in the source
// text. Score is the tagger's per-token label probability; zero means the
// tagger did not report probabilities.
type Token struct {
	Text  string
	Start int
	End   int
	Score float64
}

// Decode scans tokens left to right and turns the aligned tags into entities.
//
// Tag semantics:
//   - "B-X" closes any open span and opens a new span of label X.
//   - "I-X" extends the open span only when its label matches X. A dangling
//     "I-X" (no open span, or an open span of another label) is treated as
//     "B-X", since taggers do emit such sequences.
//   - "O" closes any open span.
//   - TagPadding and empty tags are skipped without touching the open span.
//
// Tags with an unknown entity label close any open span and are otherwise
// ignored. A still-open span is closed at end of input. tokens and tags must
// be aligned 1:1; extra elements on either side are ignored.
func Decode(tokens []Token, tags []string) []entity.Entity {
	n := len(tokens)
	if len(tags) < n {
		n = len(tags)
	}

	entities := make([]entity.Entity, 0, n/2)

	var (
		open      bool
		label     entity.Label
		start     int
		end       int
		scoreSum  float64
		scoreHits int
	)

	closeSpan := func(sourceText string) {
		if !open {
			return
		}
		conf := 1.0
		if scoreHits > 0 {
			conf = scoreSum / float64(scoreHits)
		}
		entities = append(entities, entity.Entity{
			Text:       sourceText,
			Label:      label,
			Start:      start,
			End:        end,
			Confidence: conf,
		})
		open = false
	}

	var text strings.Builder

	flush := func() {
		closeSpan(text.String())
		text.Reset()
	}

	for i := 0; i < n; i++ {
		tok, tag := tokens[i], tags[i]

		if tag == TagPadding || tag == "" {
			continue
		}
		if tag == TagOutside {
			flush()
			continue
		}

		prefix, rawLabel, ok := splitTag(tag)
		if !ok || !entity.IsKnownLabel(rawLabel) {
			flush()
			continue
		}

		begin := prefix == "B" || !open || label != rawLabel
		if begin {
			flush()
			open = true
			label = rawLabel
			start = tok.Start
			scoreSum = 0
			scoreHits = 0
		} else if text.Len() > 0 {
			text.WriteByte(' ')
		}

		text.WriteString(tok.Text)
		end = tok.End
		if tok.Score > 0 {
			scoreSum += tok.Score
			scoreHits++
		}
	}

	flush()
	return entities
}

// splitTag parses "B-FOOD" style tags into prefix and label.
func splitTag(tag string) (prefix string, label entity.Label, ok bool) {
	p, l, found := strings.Cut(tag, "-")
	if !found || (p != "B" && p != "I") || l == "" {
		return "", "", false
	}
	return p, entity.Label(l), true
}
