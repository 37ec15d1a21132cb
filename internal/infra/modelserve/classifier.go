package modelserve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"mangwale-nlu/internal/resilience/circuitbreaker"
	"mangwale-nlu/internal/resilience/retry"
	"mangwale-nlu/internal/usecase/extract"
)

// Classifier is an HTTP client for the intent classifier serving endpoint.
// It implements extract.Classifier.
type Classifier struct {
	url            string
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewClassifier creates a classifier client for the given config.
func NewClassifier(cfg *Config) *Classifier {
	return &Classifier{
		url: cfg.ClassifierURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClassifierConfig()),
	}
}

// classifyRequest is the JSON body sent to the classifier endpoint.
type classifyRequest struct {
	Text string `json:"text"`
}

// classifyResponse is the classifier's JSON reply.
type classifyResponse struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Breaker exposes the circuit breaker for health reporting.
func (c *Classifier) Breaker() *circuitbreaker.CircuitBreaker {
	return c.circuitBreaker
}

// Classify predicts the intent label for the given text.
func (c *Classifier) Classify(ctx context.Context, text string) (*extract.IntentPrediction, error) {
	cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.doClassify(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("classifier circuit breaker open, request rejected",
				slog.String("service", "intent-classifier"),
				slog.String("state", c.circuitBreaker.State().String()))
			return nil, fmt.Errorf("classifier unavailable: circuit breaker open")
		}
		return nil, err
	}
	return cbResult.(*extract.IntentPrediction), nil
}

func (c *Classifier) doClassify(ctx context.Context, text string) (*extract.IntentPrediction, error) {
	start := time.Now()

	body, err := postJSON(ctx, c.httpClient, c.url, classifyRequest{Text: text})
	if err != nil {
		slog.WarnContext(ctx, "classifier call failed",
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, err
	}

	var resp classifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}
	if resp.Intent == "" {
		return nil, fmt.Errorf("classifier response missing intent")
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return nil, fmt.Errorf("classifier confidence %v outside [0,1]", resp.Confidence)
	}

	slog.DebugContext(ctx, "classifier call completed",
		slog.String("intent", resp.Intent),
		slog.Float64("confidence", resp.Confidence),
		slog.Duration("duration", time.Since(start)))

	return &extract.IntentPrediction{Intent: resp.Intent, Confidence: resp.Confidence}, nil
}

// postJSON posts the payload and returns the response body on 2xx.
// Non-2xx statuses come back as *retry.HTTPError so callers and breakers can
// distinguish server faults from client faults.
func postJSON(ctx context.Context, client *http.Client, url string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}
	return body, nil
}
