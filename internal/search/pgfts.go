package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher with PostgreSQL full-text search over reference_documents.
type PgFTS struct {
	db *sql.DB
}

func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy is always true. A Postgres outage surfaces as a Search error.
func (p *PgFTS) Healthy() bool {
	return true
}

func (p *PgFTS) Search(ctx context.Context, q Query) ([]Document, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, nil
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, title, content, doc_type, url,
			ts_rank(fts, plainto_tsquery('english', $1)) AS rank
		FROM reference_documents
		WHERE fts @@ plainto_tsquery('english', $1)
		ORDER BY rank DESC, created_at DESC
		LIMIT $2`, q.Text, q.limit())
	if err != nil {
		return nil, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var (
			d    Document
			rank float32
		)
		if err := rows.Scan(&d.ID, &d.Metadata.Title, &d.Metadata.Content, &d.Metadata.Type, &d.Metadata.URL, &rank); err != nil {
			return nil, fmt.Errorf("pgfts scan: %w", err)
		}
		d.Score = float64(rank)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
