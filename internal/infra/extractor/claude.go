// Package extractor provides the LLM adapters for the primary extraction
// path. It includes implementations for Claude (Anthropic) and OpenAI APIs
// with circuit breaking, outbound rate limiting, and the defensive response
// parsing the extraction pipeline depends on. There is deliberately no retry
// around these calls: a failed primary call falls straight through to the
// classifier+tagger fallback, which bounds request latency better than
// retrying a slow provider.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"mangwale-nlu/internal/resilience/circuitbreaker"
	"mangwale-nlu/internal/usecase/extract"
)

// Claude implements extract.Extractor using Anthropic's Claude API.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	limiter         *rate.Limiter
	config          *Config
	metricsRecorder CallMetricsRecorder
}

// NewClaude creates a new Claude extractor with the given API key.
// It automatically configures the circuit breaker, outbound rate limiter,
// and metrics recording.
func NewClaude(apiKey string, config *Config) *Claude {
	model := config.Model
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}

	slog.Info("Initialized Claude extractor",
		slog.String("model", model),
		slog.Int("max_tokens", config.MaxTokens),
		slog.Duration("timeout", config.Timeout))

	cfg := *config
	cfg.Model = model

	return &Claude{
		client:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.LLMExtractorConfig()),
		limiter:         rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		config:          &cfg,
		metricsRecorder: NewPrometheusCallMetrics(),
	}
}

// Breaker exposes the circuit breaker for health reporting.
func (c *Claude) Breaker() *circuitbreaker.CircuitBreaker {
	return c.circuitBreaker
}

// Extract sends the message to Claude and parses the structured reply.
// The call is rate limited and goes through the circuit breaker; any failure
// is returned to the caller, which owns the fallback decision.
func (c *Claude) Extract(ctx context.Context, text string) (*extract.ExtractorOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("claude rate limit wait: %w", err)
	}

	cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.doExtract(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("claude api circuit breaker open, request rejected",
				slog.String("service", "llm-extractor"),
				slog.String("state", c.circuitBreaker.State().String()))
			return nil, fmt.Errorf("claude api unavailable: circuit breaker open")
		}
		return nil, err
	}

	return cbResult.(*extract.ExtractorOutput), nil
}

// doExtract performs the actual API call without the circuit breaker.
func (c *Claude) doExtract(ctx context.Context, text string) (*extract.ExtractorOutput, error) {
	const provider = ProviderClaude

	slog.InfoContext(ctx, "Starting LLM extraction",
		slog.String("provider", provider),
		slog.Int("input_length", len(text)))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(buildPrompt(text)),
			),
		},
	})

	duration := time.Since(start)
	c.metricsRecorder.RecordDuration(provider, duration)

	if err != nil {
		c.metricsRecorder.RecordCall(provider, "api_error")
		slog.ErrorContext(ctx, "LLM extraction failed",
			slog.String("provider", provider),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		c.metricsRecorder.RecordCall(provider, "api_error")
		return nil, fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		c.metricsRecorder.RecordCall(provider, "api_error")
		return nil, fmt.Errorf("claude api returned unexpected response type")
	}

	out, recovered, err := parseResponse(textBlock.Text, text)
	if err != nil {
		c.metricsRecorder.RecordCall(provider, "parse_error")
		slog.WarnContext(ctx, "LLM response unparseable after recovery",
			slog.String("provider", provider),
			slog.String("error", err.Error()))
		return nil, err
	}
	for i := 0; i < recovered; i++ {
		c.metricsRecorder.RecordSpanRecovery(provider)
	}

	c.metricsRecorder.RecordCall(provider, "ok")
	slog.InfoContext(ctx, "LLM extraction completed",
		slog.String("provider", provider),
		slog.String("intent", out.Intent),
		slog.Int("entities", len(out.Entities)),
		slog.Int("recovered_spans", recovered),
		slog.Duration("duration", duration))

	return out, nil
}
