package search

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"docgen/api/internal/metrics"
	"docgen/api/internal/store"
	"docgen/api/internal/vector"
)

// Passager is the slice of the vector client the search needs.
type Passager interface {
	Passages(ctx context.Context, query string, topK int) ([]vector.Document, error)
}

// DocumentStore is the slice of the library store the search needs.
type DocumentStore interface {
	GetDocuments(ctx context.Context, ids []string) ([]store.ReferenceDocument, error)
	ListDocuments(ctx context.Context, limit int) ([]store.ReferenceDocument, error)
}

// Service tries the vector service, then the library (Meilisearch when healthy, else Postgres FTS),
// then the sample set.
type Service struct {
	vector  Passager
	meili   *Meili
	pgfts   *PgFTS
	store   DocumentStore
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type Options struct {
	Vector  Passager
	Meili   *Meili
	PgFTS   *PgFTS
	Store   DocumentStore
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// NewService wires whichever tiers are configured. Every field of opts may be nil.
func NewService(opts Options) *Service {
	return &Service{
		vector:  opts.Vector,
		meili:   opts.Meili,
		pgfts:   opts.PgFTS,
		store:   opts.Store,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

func (s *Service) Search(ctx context.Context, q Query) Response {
	if s.vector != nil {
		passages, err := s.vector.Passages(ctx, q.Text, q.limit())
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Msg("vector search failed, trying reference library")
		case len(passages) > 0:
			return Response{Documents: fromPassages(passages), Source: SourceVector}
		}
	}

	if s.meili != nil && s.meili.Healthy() {
		docs, err := s.meili.Search(ctx, q)
		if err == nil && len(docs) > 0 {
			return Response{Documents: docs, Source: SourceMeili}
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("meilisearch error, falling back to pgfts")
		}
	}

	if s.pgfts != nil {
		docs, err := s.pgfts.Search(ctx, q)
		if err == nil && len(docs) > 0 {
			return Response{Documents: docs, Source: SourcePostgres}
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("pgfts error")
		}
	}

	s.logger.Warn().Str("query", q.Text).Msg("no search tier answered, returning sample documents")
	s.metrics.Degraded(string(SourceMock))
	return Response{Documents: SampleDocuments(), Degraded: true, Source: SourceMock}
}

func fromPassages(passages []vector.Document) []Document {
	docs := make([]Document, 0, len(passages))
	for _, p := range passages {
		d := Document{ID: p.ID, Score: p.Score, Metadata: Metadata{Title: p.Title, Content: p.Body()}}
		if v, ok := p.Metadata["type"].(string); ok {
			d.Metadata.Type = v
		}
		if v, ok := p.Metadata["url"].(string); ok {
			d.Metadata.URL = v
		}
		if d.Metadata.Title == "" {
			if v, ok := p.Metadata["title"].(string); ok {
				d.Metadata.Title = v
			}
		}
		docs = append(docs, d)
	}
	return docs
}

// Resolve returns the library documents for ids, answering sample ids from the sample set.
// Ids found nowhere are skipped.
func (s *Service) Resolve(ctx context.Context, ids []string) ([]Document, error) {
	found := map[string]Document{}
	if s.store != nil {
		stored, err := s.store.GetDocuments(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, d := range stored {
			found[d.ID] = fromStored(d)
		}
	}

	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if d, ok := found[id]; ok {
			out = append(out, d)
			continue
		}
		if d, ok := SampleDocument(id); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// Index pushes a stored document into Meilisearch without blocking the caller.
func (s *Service) Index(doc store.ReferenceDocument) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexRecords([]Record{toRecord(doc)}); err != nil {
			s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("index document")
		}
	}()
}

// IndexAll indexes docs synchronously.
func (s *Service) IndexAll(docs []store.ReferenceDocument) error {
	if s.meili == nil || !s.meili.Healthy() || len(docs) == 0 {
		return nil
	}
	records := make([]Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, toRecord(d))
	}
	return s.meili.IndexRecords(records)
}

// ReindexFromStore copies the library from Postgres into Meilisearch.
func (s *Service) ReindexFromStore(ctx context.Context) {
	if s.store == nil || s.meili == nil || !s.meili.Healthy() {
		return
	}
	docs, err := s.store.ListDocuments(ctx, 0)
	if err != nil {
		s.logger.Warn().Err(err).Msg("reindex load failed")
		return
	}
	if err := s.IndexAll(docs); err != nil {
		s.logger.Warn().Err(err).Msg("reindex failed")
	}
}

func toRecord(d store.ReferenceDocument) Record {
	return Record{ID: d.ID, Title: d.Title, Content: d.Content, Type: d.Type, URL: d.URL}
}

func fromStored(d store.ReferenceDocument) Document {
	return Document{ID: d.ID, Score: 1, Metadata: Metadata{Title: d.Title, Content: d.Content, Type: d.Type, URL: d.URL}}
}
