// Package convertlog provides structured JSON logging for cmd/mdxdown
// around each file conversion. The core mdxdown library itself performs no
// I/O and does no logging (spec.md §5); this package is purely CLI-side
// ambient stack, in the teacher's slog idiom.
package convertlog

import (
	"context"
	"log/slog"
	"os"
)

// Setup initializes the default slog logger with JSON output to stdout.
func Setup() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// ConversionFields holds the fields logged per converted file.
type ConversionFields struct {
	Path      string
	BytesIn   int
	BytesOut  int
	DurationMs int64
	Outcome   string // "ok" | "tokenize_error" | "parse_error" | "callback_error"
}

// LogConversion logs a completed conversion with structured fields.
func LogConversion(logger *slog.Logger, f ConversionFields) {
	level := slog.LevelInfo
	if f.Outcome != "ok" {
		level = slog.LevelWarn
	}

	logger.Log(context.Background(), level, "convert",
		"path", f.Path,
		"bytes_in", f.BytesIn,
		"bytes_out", f.BytesOut,
		"duration_ms", f.DurationMs,
		"outcome", f.Outcome,
	)
}
