// Package logging provides structured logging configuration using log/slog.
//
// Import batches tag their context with a batch ID so every log entry
// emitted while processing a workbook can be correlated back to the run
// that produced it.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type ctxKey int

const batchIDKey ctxKey = 0

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" format in production for machine parsing (ELK, CloudWatch, etc.)
// Use "text" format in development for human readability.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithBatchID returns a context tagged with an import batch identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchIDKey, id)
}

// FromContext returns a logger enriched with batch context.
//
// When the context carries a batch ID set by WithBatchID, the returned
// logger includes batch_id in all entries so a whole import run can be
// correlated.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if id, ok := ctx.Value(batchIDKey).(string); ok && id != "" {
		logger = logger.With("batch_id", id)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
// This is useful for creating operation-specific loggers that carry
// consistent context through a multi-step process.
//
// Usage:
//
//	batchLogger := logging.WithFields(ctx,
//	    "sheet", sheet,
//	    "header_row", det.Row,
//	)
//	batchLogger.Info("import started")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
