// Package extract orchestrates the order-intent extraction pipeline.
// It coordinates the primary LLM extractor and the classifier+tagger fallback
// pair into exactly one structured result per message, with keyword-based
// intent disambiguation applied unconditionally on top of either path.
package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"mangwale-nlu/internal/domain/entity"
	"mangwale-nlu/internal/handler/http/requestid"
	"mangwale-nlu/internal/nlu/cart"
	"mangwale-nlu/internal/nlu/intent"
	"mangwale-nlu/internal/nlu/span"
	"mangwale-nlu/internal/observability/metrics"
	"mangwale-nlu/internal/observability/tracing"
)

// Service runs the two-path extraction pipeline. It holds no mutable state
// across requests and is safe for concurrent use; the only blocking work is
// the outbound model calls, each bounded by its provider's timeout.
type Service struct {
	extractor     Extractor
	classifier    Classifier
	tagger        Tagger
	disambiguator *intent.Disambiguator
	enricher      Enricher
}

// Enricher augments resolved cart items with catalog data after extraction.
// Implementations must be best-effort: they return the items unchanged on
// lookup failure and never report an error.
type Enricher interface {
	Enrich(ctx context.Context, items []entity.CartItem) []entity.CartItem
}

// NewService creates the extraction service.
//
// Parameters:
//   - extractor: primary-path LLM provider
//   - classifier: fallback intent predictor
//   - tagger: fallback sequence labeler
//   - disambiguator: keyword rule engine applied after either path
func NewService(extractor Extractor, classifier Classifier, tagger Tagger, disambiguator *intent.Disambiguator) *Service {
	return &Service{
		extractor:     extractor,
		classifier:    classifier,
		tagger:        tagger,
		disambiguator: disambiguator,
	}
}

// WithEnricher attaches a post-extraction cart enricher. Pass nil to leave
// cart items as resolved.
func (s *Service) WithEnricher(e Enricher) *Service {
	s.enricher = e
	return s
}

// Extract converts one free-form message into a structured order intent.
//
// The contract is all-or-nothing per request: apart from input validation and
// context cancellation, the caller always receives a well-formed result. When
// the primary path fails the fallback pair is tried; when both fail the
// degraded result {intent:"unknown", confidence:0.5} is returned rather than
// an error. Confidence, not errors, is the downstream clarification signal.
func (s *Service) Extract(ctx context.Context, text string) (*entity.ExtractionResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	requestID := s.getOrCreateRequestID(ctx)
	start := time.Now()

	ctx, sp := tracing.GetTracer().Start(ctx, "extract.Extract")
	defer sp.End()

	result, err := s.runPipeline(ctx, requestID, text)
	if err != nil {
		// Cancellation is the one error that crosses the boundary: partial
		// results are never returned for an abandoned request.
		return nil, err
	}

	if s.enricher != nil && len(result.CartItems) > 0 {
		result.CartItems = s.enricher.Enrich(ctx, result.CartItems)
	}

	duration := time.Since(start)
	sp.SetAttributes(
		attribute.String("extract.path", string(result.Path)),
		attribute.String("extract.intent", result.Intent),
		attribute.Int("extract.entities", len(result.Entities)),
	)
	metrics.RecordExtraction(result, duration)

	slog.InfoContext(ctx, "extraction completed",
		slog.String("request_id", requestID),
		slog.String("path", string(result.Path)),
		slog.String("intent", result.Intent),
		slog.Float64("confidence", result.Confidence),
		slog.Int("entities", len(result.Entities)),
		slog.Int("cart_items", len(result.CartItems)),
		slog.Duration("duration", duration))

	return result, nil
}

// runPipeline walks the fallback chain: PRIMARY, then FALLBACK, then the
// degraded FAILED result. No step retries; a failed call moves straight to
// the next state to bound worst-case latency.
func (s *Service) runPipeline(ctx context.Context, requestID, text string) (*entity.ExtractionResult, error) {
	out, err := s.extractor.Extract(ctx, text)
	if err == nil {
		return s.finalize(ctx, text, out, entity.PathPrimary), nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	slog.WarnContext(ctx, "primary extractor failed, using classifier+tagger fallback",
		slog.String("request_id", requestID),
		slog.Any("error", err))
	metrics.RecordFallback("llm_error")

	out, err = s.runFallback(ctx, requestID, text)
	if err == nil {
		return s.finalize(ctx, text, out, entity.PathFallback), nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	slog.ErrorContext(ctx, "both extraction paths failed, returning degraded result",
		slog.String("request_id", requestID),
		slog.Any("error", err))

	return entity.FailedResult(text), nil
}

// runFallback calls the classifier and the tagger concurrently. The
// classifier is load-bearing: its failure fails the fallback path. Tagger
// failures degrade to an empty entity list, since entity extraction is
// best-effort while intent classification carries the response.
func (s *Service) runFallback(ctx context.Context, requestID, text string) (*ExtractorOutput, error) {
	var (
		pred   *IntentPrediction
		tagged []TaggedToken
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		pred, err = s.classifier.Classify(gctx, text)
		return err
	})

	g.Go(func() error {
		toks, err := s.tagger.Tag(gctx, text)
		if err != nil {
			slog.WarnContext(gctx, "tagger failed, continuing without entities",
				slog.String("request_id", requestID),
				slog.Any("error", err))
			return nil
		}
		tagged = toks
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ExtractorOutput{
		Intent:     pred.Intent,
		Confidence: pred.Confidence,
		Entities:   decodeTagged(tagged),
	}, nil
}

// finalize applies the steps shared by both paths: cart derivation when the
// LLM did not already propose one, then unconditional keyword disambiguation.
func (s *Service) finalize(ctx context.Context, text string, out *ExtractorOutput, path entity.ExtractionPath) *entity.ExtractionResult {
	items := out.CartItems
	if items == nil {
		items = cart.Build(out.Entities)
	}

	finalIntent, confidence := s.disambiguator.Reconcile(text, out.Intent, out.Confidence)
	if finalIntent != out.Intent {
		metrics.RecordIntentOverride(out.Intent, finalIntent)
		slog.InfoContext(ctx, "intent overridden by keyword evidence",
			slog.String("from", out.Intent),
			slog.String("to", finalIntent))
	}

	entities := out.Entities
	if entities == nil {
		entities = []entity.Entity{}
	}

	return &entity.ExtractionResult{
		Intent:     finalIntent,
		Confidence: clamp01(confidence),
		Entities:   entities,
		CartItems:  items,
		RawText:    text,
		Path:       path,
	}
}

// decodeTagged adapts the tagger's wire tokens to the span decoder input.
func decodeTagged(tagged []TaggedToken) []entity.Entity {
	if len(tagged) == 0 {
		return []entity.Entity{}
	}

	tokens := make([]span.Token, len(tagged))
	tags := make([]string, len(tagged))
	for i, tt := range tagged {
		tokens[i] = span.Token{Text: tt.Token, Start: tt.CharStart, End: tt.CharEnd, Score: tt.Score}
		tags[i] = tt.Tag
	}

	return span.Decode(tokens, tags)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// getOrCreateRequestID extracts the request ID from context or creates a new one.
func (s *Service) getOrCreateRequestID(ctx context.Context) string {
	if requestID := requestid.FromContext(ctx); requestID != "" {
		return requestID
	}
	return uuid.New().String()
}
