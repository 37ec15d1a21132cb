package metrics

import (
	"time"

	"mangwale-nlu/internal/domain/entity"
)

// RecordExtraction records one completed extraction: which path produced it,
// how long it took, and what it yielded.
func RecordExtraction(result *entity.ExtractionResult, duration time.Duration) {
	path := string(result.Path)
	ExtractionsTotal.WithLabelValues(path).Inc()
	ExtractionDuration.WithLabelValues(path).Observe(duration.Seconds())

	for _, e := range result.Entities {
		EntitiesExtractedTotal.WithLabelValues(string(e.Label)).Inc()
	}
	CartItemsResolvedTotal.Add(float64(len(result.CartItems)))
}

// RecordFallback records a primary-path failure that triggered the fallback
// chain. Reason is a short stable token such as "llm_error" or "llm_parse".
func RecordFallback(reason string) {
	FallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordIntentOverride records a keyword-evidence intent flip.
func RecordIntentOverride(from, to string) {
	IntentOverridesTotal.WithLabelValues(from, to).Inc()
}

// RecordCatalogLookup records one catalog search call.
// Outcome should be "hit", "miss", or "error".
func RecordCatalogLookup(outcome string) {
	CatalogLookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordCatalogCache records one catalog cache read.
// Result should be "hit" or "miss".
func RecordCatalogCache(result string) {
	CatalogCacheHitsTotal.WithLabelValues(result).Inc()
}
