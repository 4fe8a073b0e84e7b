package convertlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func TestLogConversion_OkAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	LogConversion(logger, ConversionFields{
		Path:       "doc.mdx",
		BytesIn:    100,
		BytesOut:   80,
		DurationMs: 3,
		Outcome:    "ok",
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line: %v (%s)", err, buf.String())
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
	if entry["path"] != "doc.mdx" {
		t.Errorf("path = %v", entry["path"])
	}
	if entry["outcome"] != "ok" {
		t.Errorf("outcome = %v", entry["outcome"])
	}
}

func TestLogConversion_ErrorOutcomeAtWarnLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	LogConversion(logger, ConversionFields{
		Path:    "broken.mdx",
		Outcome: "tokenize_error",
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line: %v (%s)", err, buf.String())
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
}
