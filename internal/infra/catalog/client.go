package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"mangwale-nlu/internal/resilience/circuitbreaker"
	"mangwale-nlu/internal/resilience/retry"
	"mangwale-nlu/internal/usecase/enrich"
)

// Client is an HTTP client for the catalog service's product search API.
// It implements enrich.Catalog. Unlike the extraction-path clients, catalog
// lookups do retry: enrichment runs off the latency-critical path and a
// transient miss here directly costs order quality.
type Client struct {
	searchURL      string
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewClient creates a catalog search client for the given config.
func NewClient(cfg *Config) *Client {
	return &Client{
		searchURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/v1/products/search",
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: circuitbreaker.New(circuitbreaker.CatalogSearchConfig()),
		retryConfig:    retry.CatalogConfig(),
	}
}

// searchResponse is the catalog service's reply: products ordered by match
// quality, best first.
type searchResponse struct {
	Products []struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
		Store string  `json:"store_name"`
	} `json:"products"`
}

// Breaker exposes the circuit breaker for health reporting.
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.circuitBreaker
}

// Search returns the best product match for the given free-text name, or
// (nil, nil) when the catalog has no match.
func (c *Client) Search(ctx context.Context, name string) (*enrich.Product, error) {
	var result *enrich.Product

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doSearch(ctx, name)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("catalog circuit breaker open, request rejected",
					slog.String("service", "catalog-search"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("catalog unavailable: circuit breaker open")
			}
			return err
		}
		result, _ = cbResult.(*enrich.Product)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("catalog search failed after retries: %w", retryErr)
	}

	return result, nil
}

func (c *Client) doSearch(ctx context.Context, name string) (*enrich.Product, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.searchURL+"?q="+url.QueryEscape(name)+"&limit=1", nil)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
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

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	slog.DebugContext(ctx, "catalog search completed",
		slog.String("query", name),
		slog.Int("results", len(sr.Products)),
		slog.Duration("duration", time.Since(start)))

	if len(sr.Products) == 0 {
		return nil, nil
	}

	best := sr.Products[0]
	if best.ID == "" {
		return nil, fmt.Errorf("catalog product missing id")
	}
	return &enrich.Product{
		ID:    best.ID,
		Name:  best.Name,
		Price: best.Price,
		Store: best.Store,
	}, nil
}
