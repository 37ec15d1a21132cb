package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout bounds each request to the given duration. A slow LLM call that
// outlives the deadline gets 504 while the pipeline goroutine winds down via
// context cancellation; its late writes are discarded.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()

			tw := &timeoutWriter{ResponseWriter: w}
			done := make(chan struct{})

			go func() {
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				tw.respondTimeout()
			}
		})
	}
}

// timeoutWriter serializes writes between the handler goroutine and the
// timeout path. Whichever side writes first wins; the other side's writes
// are dropped.
type timeoutWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	timedOut bool
	written  bool
}

func (w *timeoutWriter) WriteHeader(statusCode int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.timedOut && !w.written {
		w.written = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *timeoutWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timedOut {
		return 0, http.ErrHandlerTimeout
	}

	if !w.written {
		w.written = true
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}

	return w.ResponseWriter.Write(data)
}

// respondTimeout writes the 504 response unless the handler already wrote.
func (w *timeoutWriter) respondTimeout() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.timedOut = true
	if !w.written {
		w.Header().Set("Content-Type", "application/json")
		w.ResponseWriter.WriteHeader(http.StatusGatewayTimeout)
		_, _ = w.ResponseWriter.Write([]byte(`{"error":"request timeout"}`))
	}
}
