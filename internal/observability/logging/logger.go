package logging

import (
	"context"
	"log/slog"
	"os"

	"mangwale-nlu/internal/handler/http/requestid"
)

// NewLogger creates the service's structured JSON logger. The level comes
// from LOG_LEVEL (debug, info, warn, error); anything else means info.
func NewLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	})

	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID returns the logger with the request ID from ctx attached,
// so every line for one extraction request carries the same correlation
// field. The logger is returned unchanged when ctx has no ID.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}
