package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("mangwale-nlu")

// GetTracer exposes the service tracer so pipeline stages can open child
// spans under the request span, e.g. around the LLM call or the catalog
// lookup.
func GetTracer() trace.Tracer {
	return tracer
}
