package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"docgen/api/internal/logging"
	"docgen/api/internal/metrics"
)

func completionServer(t *testing.T, status int, content string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "gemini-2.0-flash" || len(body.Messages) != 1 || body.Messages[0].Role != "user" {
			t.Errorf("unexpected request body %+v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gemini-2.0-flash",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
}

func newGateway(url string, m *metrics.Metrics) *Gateway {
	return NewGateway(Config{APIKey: "test", BaseURL: url + "/", Model: "gemini-2.0-flash"}, logging.Nop(), m)
}

func TestGenerateReturnsText(t *testing.T) {
	var calls int32
	srv := completionServer(t, http.StatusOK, "# GRANT RFP: Gardens", &calls)
	defer srv.Close()

	m := metrics.New()
	got, err := newGateway(srv.URL, m).Generate(context.Background(), "generate", "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "# GRANT RFP: Gardens" {
		t.Fatalf("expected model text, got %q", got)
	}
	if v := testutil.ToFloat64(m.LLMCallsTotal.WithLabelValues("generate", "ok")); v != 1 {
		t.Fatalf("expected one ok call recorded, got %v", v)
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	var calls int32
	srv := completionServer(t, http.StatusOK, "  ", &calls)
	defer srv.Close()

	_, err := newGateway(srv.URL, nil).Generate(context.Background(), "generate", "prompt")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateUpstreamErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := completionServer(t, http.StatusInternalServerError, "", &calls)
	defer srv.Close()

	_, err := newGateway(srv.URL, nil).Generate(context.Background(), "ai-edit", "prompt")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %T %v", err, err)
	}
	if upstream.Status != http.StatusInternalServerError || upstream.Operation != "ai-edit" {
		t.Fatalf("unexpected upstream error %+v", upstream)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly one attempt, got %d", n)
	}
}

func TestGeneratorFunc(t *testing.T) {
	var g Generator = GeneratorFunc(func(_ context.Context, op, p string) (string, error) {
		return op + ":" + p, nil
	})
	got, _ := g.Generate(context.Background(), "review", "doc")
	if got != "review:doc" {
		t.Fatalf("expected review:doc, got %q", got)
	}
}
