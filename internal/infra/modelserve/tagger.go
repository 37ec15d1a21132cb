package modelserve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"mangwale-nlu/internal/resilience/circuitbreaker"
	"mangwale-nlu/internal/usecase/extract"
)

// Tagger is an HTTP client for the token tagger serving endpoint.
// It implements extract.Tagger.
type Tagger struct {
	url            string
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewTagger creates a tagger client for the given config.
func NewTagger(cfg *Config) *Tagger {
	return &Tagger{
		url: cfg.TaggerURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: circuitbreaker.New(circuitbreaker.TaggerConfig()),
	}
}

// tagRequest is the JSON body sent to the tagger endpoint.
type tagRequest struct {
	Text string `json:"text"`
}

// tagResponse is the tagger's JSON reply: one entry per token, aligned with
// the source text via character offsets.
type tagResponse struct {
	Tokens []taggedTokenWire `json:"tokens"`
}

type taggedTokenWire struct {
	Token     string  `json:"token"`
	Tag       string  `json:"tag"`
	CharStart int     `json:"char_start"`
	CharEnd   int     `json:"char_end"`
	Score     float64 `json:"score"`
}

// Breaker exposes the circuit breaker for health reporting.
func (t *Tagger) Breaker() *circuitbreaker.CircuitBreaker {
	return t.circuitBreaker
}

// Tag labels each token of the given text with a B/I/O tag.
func (t *Tagger) Tag(ctx context.Context, text string) ([]extract.TaggedToken, error) {
	cbResult, err := t.circuitBreaker.Execute(func() (interface{}, error) {
		return t.doTag(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("tagger circuit breaker open, request rejected",
				slog.String("service", "token-tagger"),
				slog.String("state", t.circuitBreaker.State().String()))
			return nil, fmt.Errorf("tagger unavailable: circuit breaker open")
		}
		return nil, err
	}
	return cbResult.([]extract.TaggedToken), nil
}

func (t *Tagger) doTag(ctx context.Context, text string) ([]extract.TaggedToken, error) {
	start := time.Now()

	body, err := postJSON(ctx, t.httpClient, t.url, tagRequest{Text: text})
	if err != nil {
		slog.WarnContext(ctx, "tagger call failed",
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, err
	}

	var resp tagResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode tagger response: %w", err)
	}

	tokens := make([]extract.TaggedToken, 0, len(resp.Tokens))
	for i, tok := range resp.Tokens {
		if tok.CharStart < 0 || tok.CharEnd < tok.CharStart || tok.CharEnd > len(text) {
			return nil, fmt.Errorf("tagger token %d has offsets (%d,%d) outside text of length %d",
				i, tok.CharStart, tok.CharEnd, len(text))
		}
		tokens = append(tokens, extract.TaggedToken{
			Token:     tok.Token,
			Tag:       tok.Tag,
			CharStart: tok.CharStart,
			CharEnd:   tok.CharEnd,
			Score:     tok.Score,
		})
	}

	slog.DebugContext(ctx, "tagger call completed",
		slog.Int("tokens", len(tokens)),
		slog.Duration("duration", time.Since(start)))

	return tokens, nil
}
