package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"mangwale-nlu/internal/resilience/circuitbreaker"
	"mangwale-nlu/internal/usecase/extract"
)

// OpenAI implements extract.Extractor using OpenAI's chat completion API.
type OpenAI struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	limiter         *rate.Limiter
	config          *Config
	metricsRecorder CallMetricsRecorder
}

// NewOpenAI creates a new OpenAI extractor with the given API key.
func NewOpenAI(apiKey string, config *Config) *OpenAI {
	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	slog.Info("Initialized OpenAI extractor",
		slog.String("model", model),
		slog.Int("max_tokens", config.MaxTokens),
		slog.Duration("timeout", config.Timeout))

	cfg := *config
	cfg.Model = model

	return &OpenAI{
		client:          openai.NewClient(apiKey),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.LLMExtractorConfig()),
		limiter:         rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		config:          &cfg,
		metricsRecorder: NewPrometheusCallMetrics(),
	}
}

// Breaker exposes the circuit breaker for health reporting.
func (o *OpenAI) Breaker() *circuitbreaker.CircuitBreaker {
	return o.circuitBreaker
}

// Extract sends the message to OpenAI and parses the structured reply.
func (o *OpenAI) Extract(ctx context.Context, text string) (*extract.ExtractorOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("openai rate limit wait: %w", err)
	}

	cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
		return o.doExtract(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("openai api circuit breaker open, request rejected",
				slog.String("service", "llm-extractor"),
				slog.String("state", o.circuitBreaker.State().String()))
			return nil, fmt.Errorf("openai api unavailable: circuit breaker open")
		}
		return nil, err
	}

	return cbResult.(*extract.ExtractorOutput), nil
}

// doExtract performs the actual API call without the circuit breaker.
func (o *OpenAI) doExtract(ctx context.Context, text string) (*extract.ExtractorOutput, error) {
	const provider = ProviderOpenAI

	slog.InfoContext(ctx, "Starting LLM extraction",
		slog.String("provider", provider),
		slog.Int("input_length", len(text)))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: buildPrompt(text),
		}},
	})

	duration := time.Since(start)
	o.metricsRecorder.RecordDuration(provider, duration)

	if err != nil {
		o.metricsRecorder.RecordCall(provider, "api_error")
		slog.ErrorContext(ctx, "LLM extraction failed",
			slog.String("provider", provider),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		o.metricsRecorder.RecordCall(provider, "api_error")
		return nil, fmt.Errorf("openai api returned empty response")
	}

	out, recovered, err := parseResponse(resp.Choices[0].Message.Content, text)
	if err != nil {
		o.metricsRecorder.RecordCall(provider, "parse_error")
		slog.WarnContext(ctx, "LLM response unparseable after recovery",
			slog.String("provider", provider),
			slog.String("error", err.Error()))
		return nil, err
	}
	for i := 0; i < recovered; i++ {
		o.metricsRecorder.RecordSpanRecovery(provider)
	}

	o.metricsRecorder.RecordCall(provider, "ok")
	slog.InfoContext(ctx, "LLM extraction completed",
		slog.String("provider", provider),
		slog.String("intent", out.Intent),
		slog.Int("entities", len(out.Entities)),
		slog.Int("recovered_spans", recovered),
		slog.Duration("duration", duration))

	return out, nil
}
