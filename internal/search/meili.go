package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
	"github.com/rs/zerolog"
)

const idxReferences = "docgen_reference_documents"

var errMeiliUnhealthy = errors.New("meilisearch unhealthy")

// Meili implements Searcher over the reference library index.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
	logger  zerolog.Logger
}

// NewMeili creates a client and starts a health monitor. An unreachable server is reported as unhealthy, not as an error.
func NewMeili(url, apiKey string, logger zerolog.Logger) *Meili {
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		done:   make(chan struct{}),
		logger: logger,
	}

	if _, err := m.client.Health(); err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("meilisearch unavailable")
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: idxReferences, PrimaryKey: "id"}); err != nil {
		m.logger.Debug().Err(err).Msg("create index (may already exist)")
	}
	index := m.client.Index(idxReferences)
	filterable := []interface{}{"type"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.logger.Warn().Err(err).Msg("update filterable attributes")
	}
	searchable := []string{"title", "content"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.logger.Warn().Err(err).Msg("update searchable attributes")
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.logger.Info().Msg("meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

func (m *Meili) Close() {
	close(m.done)
}

func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

func (m *Meili) Search(ctx context.Context, q Query) ([]Document, error) {
	if !m.healthy.Load() {
		return nil, errMeiliUnhealthy
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: []*meili.SearchRequest{{
			IndexUID:         idxReferences,
			Query:            q.Text,
			Limit:            int64(q.limit()),
			ShowRankingScore: true,
		}},
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	docs := make([]Document, 0)
	for _, sr := range resp.Results {
		for _, hit := range sr.Hits {
			docs = append(docs, hitToDocument(hit))
		}
	}
	return docs, nil
}

func hitToDocument(hit meili.Hit) Document {
	doc := Document{
		ID: decodeString(hit, "id"),
		Metadata: Metadata{
			Title:   decodeString(hit, "title"),
			Content: decodeString(hit, "content"),
			Type:    decodeString(hit, "type"),
			URL:     decodeString(hit, "url"),
		},
	}
	if raw, ok := hit["_rankingScore"]; ok {
		_ = json.Unmarshal(raw, &doc.Score)
	}
	if strings.TrimSpace(doc.Metadata.Title) == "" {
		doc.Metadata.Title = "Untitled"
	}
	return doc
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// IndexRecords adds or updates records in the library index.
func (m *Meili) IndexRecords(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	_, err := m.client.Index(idxReferences).AddDocuments(records, nil)
	return err
}
