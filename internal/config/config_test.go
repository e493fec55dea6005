package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_ADDR", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("MAX_VERSIONS", "")
	t.Setenv("SELECTION_TTL_SECONDS", "")

	cfg := Load()
	if cfg.Addr != ":3000" {
		t.Fatalf("expected default addr :3000, got %q", cfg.Addr)
	}
	if cfg.LLMModel != "gemini-2.0-flash" {
		t.Fatalf("expected default model, got %q", cfg.LLMModel)
	}
	if cfg.MaxVersions != 100 {
		t.Fatalf("expected 100 max versions, got %d", cfg.MaxVersions)
	}
	if cfg.SelectionTTL != 30*time.Minute {
		t.Fatalf("expected 30m selection ttl, got %s", cfg.SelectionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_ADDR", ":9999")
	t.Setenv("MAX_VERSIONS", "12")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("WORKSPACE_CAPACITY", "not-a-number")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg := Load()
	if cfg.Addr != ":9999" {
		t.Fatalf("expected :9999, got %q", cfg.Addr)
	}
	if cfg.MaxVersions != 12 {
		t.Fatalf("expected 12, got %d", cfg.MaxVersions)
	}
	if !cfg.LogPretty {
		t.Fatal("expected pretty logging")
	}
	if cfg.WorkspaceCapacity != 256 {
		t.Fatalf("expected fallback capacity for invalid value, got %d", cfg.WorkspaceCapacity)
	}
	if cfg.LLMAPIKey != "gemini-key" {
		t.Fatalf("expected GEMINI_API_KEY fallback, got %q", cfg.LLMAPIKey)
	}
}
