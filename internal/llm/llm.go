// Package llm is the gateway to the hosted language model. Every call is a single attempt.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog"

	"docgen/api/internal/metrics"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("language model returned empty content")

// UpstreamError wraps a transport or service failure of the language model.
type UpstreamError struct {
	Operation string
	Status    int
	Err       error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: language model status %d: %v", e.Operation, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: language model: %v", e.Operation, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Generator turns a prompt into model text. operation labels the call in logs and metrics.
type Generator interface {
	Generate(ctx context.Context, operation, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, operation, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, operation, prompt string) (string, error) {
	return f(ctx, operation, prompt)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Gateway struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewGateway(cfg Config, logger zerolog.Logger, m *metrics.Metrics) *Gateway {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey == "" {
		logger.Warn().Msg("no language model API key configured, generation requests will fail")
	}
	return &Gateway{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
		metrics: m,
	}
}

func (g *Gateway) Generate(ctx context.Context, operation, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	elapsed := time.Since(started)

	if err != nil {
		upstream := &UpstreamError{Operation: operation, Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			upstream.Status = apiErr.StatusCode
		}
		g.metrics.ObserveLLM(operation, "error", elapsed)
		g.logger.Warn().Err(err).Str("operation", operation).Int("status", upstream.Status).
			Dur("duration", elapsed).Msg("language model call failed")
		return "", upstream
	}

	text := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	if strings.TrimSpace(text) == "" {
		g.metrics.ObserveLLM(operation, "empty", elapsed)
		g.logger.Warn().Str("operation", operation).Msg("language model returned empty content")
		return "", ErrEmptyResponse
	}

	g.metrics.ObserveLLM(operation, "ok", elapsed)
	g.logger.Debug().Str("operation", operation).Int("chars", len(text)).
		Dur("duration", elapsed).Msg("language model call succeeded")
	return text, nil
}
