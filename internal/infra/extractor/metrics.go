package extractor

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CallMetricsRecorder records per-call metrics for the LLM extraction
// adapters. The interface exists so unit tests can inject a mock instead of
// touching the global Prometheus registry, and so the same recorder serves
// every provider (Claude, OpenAI, future ones).
type CallMetricsRecorder interface {
	// RecordDuration records the wall time of one LLM API call.
	RecordDuration(provider string, duration time.Duration)

	// RecordCall records the outcome of one extraction attempt:
	// "ok", "api_error", or "parse_error".
	RecordCall(provider, outcome string)

	// RecordSpanRecovery increments the counter when an entity span had to
	// be recovered by substring search instead of model-provided offsets.
	RecordSpanRecovery(provider string)
}

// PrometheusCallMetrics implements CallMetricsRecorder using Prometheus.
type PrometheusCallMetrics struct {
	durationHistogram *prometheus.HistogramVec
	callsCounter      *prometheus.CounterVec
	recoveryCounter   *prometheus.CounterVec
}

var (
	callMetricsInstance *PrometheusCallMetrics
	callMetricsOnce     sync.Once
)

// getOrCreateHistogramVec gets an existing histogram vec or creates one.
func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

// getOrCreateCounterVec gets an existing counter vec or creates one.
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// NewPrometheusCallMetrics creates the Prometheus-backed recorder.
// Uses singleton pattern to avoid duplicate metric registration in tests.
func NewPrometheusCallMetrics() *PrometheusCallMetrics {
	callMetricsOnce.Do(func() {
		callMetricsInstance = &PrometheusCallMetrics{
			durationHistogram: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "llm_extraction_call_duration_seconds",
				Help:    "Wall time of one LLM extraction API call",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"provider"}),
			callsCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "llm_extraction_calls_total",
				Help: "Total LLM extraction attempts by provider and outcome",
			}, []string{"provider", "outcome"}),
			recoveryCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "llm_extraction_span_recoveries_total",
				Help: "Entity spans recovered via substring search instead of model offsets",
			}, []string{"provider"}),
		}
	})
	return callMetricsInstance
}

// RecordDuration implements CallMetricsRecorder.RecordDuration
func (p *PrometheusCallMetrics) RecordDuration(provider string, duration time.Duration) {
	p.durationHistogram.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordCall implements CallMetricsRecorder.RecordCall
func (p *PrometheusCallMetrics) RecordCall(provider, outcome string) {
	p.callsCounter.WithLabelValues(provider, outcome).Inc()
}

// RecordSpanRecovery implements CallMetricsRecorder.RecordSpanRecovery
func (p *PrometheusCallMetrics) RecordSpanRecovery(provider string) {
	p.recoveryCounter.WithLabelValues(provider).Inc()
}
