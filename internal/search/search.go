// Package search finds reference documents for a query across the vector service, the library index and a fixed sample set.
package search

import "context"

// Source names the tier that answered a search.
type Source string

const (
	SourceVector   Source = "vector"
	SourceMeili    Source = "meilisearch"
	SourcePostgres Source = "postgres"
	SourceMock     Source = "mock"
)

type Metadata struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Document is a single hit in the shape the client renders.
type Document struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

type Query struct {
	Text  string
	Limit int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return 10
	}
	return q.Limit
}

// Response is the envelope returned by the search endpoint. Degraded is set when the sample set was served.
type Response struct {
	Documents []Document `json:"documents"`
	Degraded  bool       `json:"degraded"`
	Source    Source     `json:"source"`
}

// Searcher is one library tier.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Document, error)
	Healthy() bool
}

// Record is the data indexed for a library document.
type Record struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
	URL     string `json:"url"`
}
