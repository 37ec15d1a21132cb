// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Extraction metrics track the two-path pipeline behavior
var (
	// ExtractionsTotal counts completed extractions by which path produced the result
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractions_total",
			Help: "Total number of completed extractions by pipeline path",
		},
		[]string{"path"},
	)

	// ExtractionDuration measures end-to-end extraction duration per path.
	// Buckets cover the spread between classifier-only fallbacks and slow LLM calls.
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extraction_duration_seconds",
			Help:    "End-to-end extraction duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"path"},
	)

	// FallbacksTotal counts primary-path failures by reason
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_fallbacks_total",
			Help: "Total number of primary-path failures that triggered the fallback chain",
		},
		[]string{"reason"},
	)

	// IntentOverridesTotal counts keyword-evidence intent flips
	IntentOverridesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_overrides_total",
			Help: "Total number of intent predictions overridden by keyword evidence",
		},
		[]string{"from", "to"},
	)

	// EntitiesExtractedTotal counts extracted entities by label
	EntitiesExtractedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entities_extracted_total",
			Help: "Total number of entities extracted by label",
		},
		[]string{"label"},
	)

	// CartItemsResolvedTotal counts resolved cart line items
	CartItemsResolvedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_items_resolved_total",
			Help: "Total number of cart line items resolved from entities",
		},
	)
)

// Catalog enrichment metrics
var (
	// CatalogLookupsTotal counts catalog search calls by outcome
	CatalogLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_lookups_total",
			Help: "Total number of catalog search lookups by outcome",
		},
		[]string{"outcome"},
	)

	// CatalogCacheHitsTotal counts catalog cache hits and misses
	CatalogCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_total",
			Help: "Total number of catalog cache reads by result",
		},
		[]string{"result"},
	)
)
