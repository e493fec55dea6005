package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(Config{Level: "info", Output: &buf}), "history")
	logger.Warn().Int("evicted", 1).Msg("version cap reached")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "docgen" {
		t.Fatalf("expected service=docgen, got %v", entry["service"])
	}
	if entry["component"] != "history" {
		t.Fatalf("expected component=history, got %v", entry["component"])
	}
	if entry["level"] != "warn" {
		t.Fatalf("expected warn level, got %v", entry["level"])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Output: &buf})
	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}
}
