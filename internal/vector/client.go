// Package vector talks to the embedding search service that fronts the vector index.
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const (
	ContentDocument = "document"
	ContentImage    = "image"

	MaxTopK = 20
)

// ErrUnavailable is returned when the service cannot be reached or the breaker is open.
var ErrUnavailable = errors.New("vector service unavailable")

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vector service %s: status %d: %s", e.Path, e.Status, e.Body)
}

// Match is a raw index hit.
type Match struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

func (m Match) meta(key string) string {
	if v, ok := m.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// Title is metadata.title.
func (m Match) Title() string { return m.meta("title") }

// Text prefers metadata.text over metadata.content.
func (m Match) Text() string {
	if t := m.meta("text"); t != "" {
		return t
	}
	return m.meta("content")
}

// Document is a text passage.
type Document struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Title    string         `json:"title"`
	Text     string         `json:"text,omitempty"`
	Content  string         `json:"content,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Body returns whichever text field the service filled.
func (d Document) Body() string {
	switch {
	case d.Text != "":
		return d.Text
	case d.Content != "":
		return d.Content
	}
	for _, key := range []string{"text", "content"} {
		if v, ok := d.Metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

type Image struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	ImageURL string         `json:"imageUrl"`
	Title    string         `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// URL falls back to metadata.image_url.
func (i Image) URL() string {
	if i.ImageURL != "" {
		return i.ImageURL
	}
	if v, ok := i.Metadata["image_url"].(string); ok {
		return v
	}
	return ""
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "vector-service",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var status *StatusError
			return err == nil || (errors.As(err, &status) && status.Status < 500)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("vector service circuit breaker changed state")
		},
	})
	return c
}

// TopK caps the number of hits requested for a deck of n slides.
func TopK(numSlides int) int {
	k := numSlides * 2
	if k > MaxTopK {
		return MaxTopK
	}
	if k < 1 {
		return 1
	}
	return k
}

type queryRequest struct {
	Query       string `json:"query"`
	TopK        int    `json:"topK"`
	ContentType string `json:"contentType,omitempty"`
}

// QueryPinecone is the generic index query. contentType is "document" or "image".
func (c *Client) QueryPinecone(ctx context.Context, query string, topK int, contentType string) ([]Match, error) {
	var resp struct {
		Results []Match `json:"results"`
	}
	if err := c.post(ctx, "/query-pinecone", queryRequest{Query: query, TopK: topK, ContentType: contentType}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// QueryDocuments is the document-specific query.
func (c *Client) QueryDocuments(ctx context.Context, query string, topK int) ([]Document, error) {
	var resp struct {
		Documents []Document `json:"documents"`
	}
	if err := c.post(ctx, "/query-documents", queryRequest{Query: query, TopK: topK}, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

func (c *Client) QueryImages(ctx context.Context, query string, topK int) ([]Image, error) {
	var resp struct {
		Images []Image `json:"images"`
	}
	if err := c.post(ctx, "/query-images", queryRequest{Query: query, TopK: topK}, &resp); err != nil {
		return nil, err
	}
	return resp.Images, nil
}

// Passages asks the document endpoint first and the generic endpoint when it has nothing.
func (c *Client) Passages(ctx context.Context, query string, topK int) ([]Document, error) {
	docs, err := c.QueryDocuments(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		return docs, nil
	}
	matches, err := c.QueryPinecone(ctx, query, topK, ContentDocument)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(matches))
	for _, m := range matches {
		out = append(out, Document{ID: m.ID, Score: m.Score, Title: m.Title(), Text: m.Text(), Metadata: m.Metadata})
	}
	return out, nil
}

// Images asks the image endpoint first and the generic endpoint when it has nothing.
func (c *Client) Images(ctx context.Context, query string, topK int) ([]Image, error) {
	images, err := c.QueryImages(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		return images, nil
	}
	matches, err := c.QueryPinecone(ctx, query, topK, ContentImage)
	if err != nil {
		return nil, err
	}
	out := make([]Image, 0, len(matches))
	for _, m := range matches {
		out = append(out, Image{ID: m.ID, Score: m.Score, ImageURL: m.meta("image_url"), Title: m.meta("filename")})
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, &StatusError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", path, err)
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("vector service request failed")
	}
	return err
}
