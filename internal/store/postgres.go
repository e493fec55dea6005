package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const documentColumns = `id, title, content, doc_type, url, upload_id, chunk_index, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (ReferenceDocument, error) {
	var (
		doc      ReferenceDocument
		uploadID sql.NullString
		chunk    sql.NullInt32
	)
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Type, &doc.URL, &uploadID, &chunk, &doc.CreatedAt); err != nil {
		return ReferenceDocument{}, err
	}
	if uploadID.Valid {
		doc.UploadID = &uploadID.String
	}
	if chunk.Valid {
		n := int(chunk.Int32)
		doc.ChunkIndex = &n
	}
	return doc, nil
}

// InsertDocument stores a library document. An existing id is overwritten.
func (s *PostgresStore) InsertDocument(ctx context.Context, doc ReferenceDocument) (ReferenceDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO reference_documents (id, title, content, doc_type, url, upload_id, chunk_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			doc_type = EXCLUDED.doc_type,
			url = EXCLUDED.url
		RETURNING `+documentColumns,
		doc.ID, doc.Title, doc.Content, doc.Type, doc.URL, doc.UploadID, doc.ChunkIndex)
	stored, err := scanDocument(row)
	if err != nil {
		return ReferenceDocument{}, fmt.Errorf("insert reference document: %w", err)
	}
	return stored, nil
}

// InsertUpload records an upload together with its chunk documents in one transaction.
func (s *PostgresStore) InsertUpload(ctx context.Context, upload Upload, chunks []ReferenceDocument) (Upload, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Upload{}, fmt.Errorf("begin upload tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO uploads (id, file_name, content_type, blob_key, size_bytes, chunk_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		upload.ID, upload.FileName, upload.ContentType, upload.BlobKey, upload.SizeBytes, len(chunks),
	).Scan(&upload.CreatedAt)
	if err != nil {
		return Upload{}, fmt.Errorf("insert upload: %w", err)
	}
	upload.ChunkCount = len(chunks)

	for i, chunk := range chunks {
		index := i
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reference_documents (id, title, content, doc_type, url, upload_id, chunk_index)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			chunk.ID, chunk.Title, chunk.Content, chunk.Type, chunk.URL, upload.ID, index,
		); err != nil {
			return Upload{}, fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Upload{}, fmt.Errorf("commit upload: %w", err)
	}
	return upload, nil
}

// UploadByBlobKey finds an earlier upload of identical bytes.
func (s *PostgresStore) UploadByBlobKey(ctx context.Context, key string) (Upload, error) {
	var u Upload
	err := s.db.QueryRowContext(ctx, `
		SELECT id, file_name, content_type, blob_key, size_bytes, chunk_count, created_at
		FROM uploads WHERE blob_key = $1`, key,
	).Scan(&u.ID, &u.FileName, &u.ContentType, &u.BlobKey, &u.SizeBytes, &u.ChunkCount, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Upload{}, ErrNotFound
	}
	if err != nil {
		return Upload{}, fmt.Errorf("lookup upload: %w", err)
	}
	return u, nil
}

// GetDocuments returns the documents for ids in the order requested. Unknown ids are skipped.
func (s *PostgresStore) GetDocuments(ctx context.Context, ids []string) ([]ReferenceDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM reference_documents WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get reference documents: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]ReferenceDocument, len(ids))
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reference document: %w", err)
		}
		byID[doc.ID] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reference documents: %w", err)
	}

	out := make([]ReferenceDocument, 0, len(byID))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// ListDocuments returns documents newest first, used to rebuild the search index.
func (s *PostgresStore) ListDocuments(ctx context.Context, limit int) ([]ReferenceDocument, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM reference_documents ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reference documents: %w", err)
	}
	defer rows.Close()

	docs := make([]ReferenceDocument, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reference document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ChunkTitle names the n-th chunk of an uploaded file.
func ChunkTitle(fileName string, n, total int) string {
	name := strings.TrimSpace(fileName)
	if name == "" {
		name = "Upload"
	}
	if total <= 1 {
		return name
	}
	return fmt.Sprintf("%s (part %d of %d)", name, n+1, total)
}
