package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"mangwale-nlu/internal/resilience/circuitbreaker"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "degraded"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`    // Status of each check item
	Version   string                 `json:"version"`   // Application version
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthHandler handles health check endpoint requests. It reports the state
// of the extraction pipeline's circuit breakers and of the optional catalog
// cache. Open breakers and an unreachable cache degrade the status but never
// fail it: every dependency here has a documented fallback, so the process is
// still able to serve requests.
type HealthHandler struct {
	Version string

	// Breakers are the circuit breakers guarding external calls (LLM,
	// classifier, tagger, catalog). Optional.
	Breakers []*circuitbreaker.CircuitBreaker

	// Redis is the catalog cache client; nil when caching is disabled.
	Redis *redis.Client
}

// ServeHTTP reports health status. It always returns 200; the body's status
// field distinguishes "healthy" from "degraded".
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	degraded := false

	for _, cb := range h.Breakers {
		state := cb.State()
		check := CheckStatus{Status: "healthy", Details: map[string]interface{}{
			"state": state.String(),
		}}
		if state == gobreaker.StateOpen {
			check.Status = "degraded"
			check.Message = "circuit breaker open, calls are being rejected"
			degraded = true
		}
		checks["circuit:"+cb.Name()] = check
	}

	if h.Redis != nil {
		checks["catalog_cache"] = h.checkRedis(ctx)
		if checks["catalog_cache"].Status == "degraded" {
			degraded = true
		}
	}

	status := "healthy"
	if degraded {
		status = "degraded"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("health: failed to encode response: %v", err)
	}
}

// checkRedis pings the catalog cache. Cache loss is degradation, not an
// outage: every lookup falls through to the catalog service.
func (h *HealthHandler) checkRedis(ctx context.Context) CheckStatus {
	if err := h.Redis.Ping(ctx).Err(); err != nil {
		return CheckStatus{
			Status:  "degraded",
			Message: "catalog cache unreachable: " + err.Error(),
		}
	}
	return CheckStatus{Status: "healthy"}
}

// ReadyHandler handles Kubernetes readiness probe requests. The service has
// no mandatory backing store; once the process is up and routing, it is
// ready.
type ReadyHandler struct{}

// ServeHTTP always returns 200 OK once the server is accepting connections.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		log.Printf("ready: failed to write response: %v", err)
	}
}

// LiveHandler handles Kubernetes liveness probe requests.
type LiveHandler struct{}

// ServeHTTP performs a simple liveness check and always returns 200 OK
// if the application is running and able to respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		log.Printf("alive: failed to write response: %v", err)
	}
}
