// Package logging builds the service's slog loggers and attaches the
// request ID so one extraction request can be followed across the handler,
// pipeline, and model-call logs.
package logging
