package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"docgen/api/internal/blob"
	"docgen/api/internal/retrieval"
	"docgen/api/internal/store"
	"docgen/api/internal/util"
)

const maxUploadBytes = 20 << 20

var errLibraryDisabled = domainError(http.StatusServiceUnavailable, "LIBRARY_UNAVAILABLE", "Reference library is not configured", nil)

type DocumentInput struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
	URL     string `json:"url"`
}

// AddDocument stores a reference document and indexes it for search.
func (s *Service) AddDocument(ctx context.Context, in DocumentInput) (store.ReferenceDocument, error) {
	if s.library == nil {
		return store.ReferenceDocument{}, errLibraryDisabled
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return store.ReferenceDocument{}, validationError("Title and content are required")
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = util.NewID("doc")
	}
	docType := in.Type
	if docType == "" {
		docType = "document"
	}
	doc, err := s.library.InsertDocument(ctx, store.ReferenceDocument{
		ID:      id,
		Title:   strings.TrimSpace(in.Title),
		Content: retrieval.Truncate(in.Content, retrieval.MaxDocumentChars),
		Type:    docType,
		URL:     in.URL,
	})
	if err != nil {
		return store.ReferenceDocument{}, err
	}
	if s.search != nil {
		s.search.Index(doc)
	}
	return doc, nil
}

type UploadInput struct {
	FileName    string
	ContentType string
	Data        []byte
}

type UploadResult struct {
	Upload    store.Upload              `json:"upload"`
	Documents []store.ReferenceDocument `json:"documents,omitempty"`
	Duplicate bool                      `json:"duplicate"`
}

// Upload keeps the original bytes in the blob store, extracts and chunks the text and records every
// chunk as a library document. Identical bytes uploaded again return the earlier upload.
func (s *Service) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	if s.library == nil || s.blobs == nil {
		return UploadResult{}, errLibraryDisabled
	}
	if len(in.Data) == 0 {
		return UploadResult{}, validationError("File is required")
	}
	if len(in.Data) > maxUploadBytes {
		return UploadResult{}, domainError(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the upload limit", map[string]any{"maxBytes": maxUploadBytes})
	}

	key := blob.Key(in.Data)
	existing, err := s.library.UploadByBlobKey(ctx, key)
	switch {
	case err == nil:
		return UploadResult{Upload: existing, Duplicate: true}, nil
	case !errors.Is(err, store.ErrNotFound):
		return UploadResult{}, err
	}

	text, err := retrieval.ExtractText(ctx, in.FileName, in.ContentType, in.Data)
	if err != nil {
		return UploadResult{}, err
	}
	pieces, err := retrieval.Chunk(text)
	if err != nil {
		return UploadResult{}, err
	}
	if len(pieces) == 0 {
		return UploadResult{}, validationError("File contains no text")
	}

	if err := s.blobs.Put(ctx, key, in.ContentType, in.Data); err != nil {
		return UploadResult{}, fmt.Errorf("store upload blob: %w", err)
	}

	uploadID := util.NewID("upl")
	chunks := make([]store.ReferenceDocument, len(pieces))
	for i, piece := range pieces {
		index := i
		chunks[i] = store.ReferenceDocument{
			ID:         fmt.Sprintf("%s-%d", uploadID, i),
			Title:      store.ChunkTitle(in.FileName, i, len(pieces)),
			Content:    piece,
			Type:       "upload",
			UploadID:   &uploadID,
			ChunkIndex: &index,
		}
	}
	upload, err := s.library.InsertUpload(ctx, store.Upload{
		ID:          uploadID,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		BlobKey:     key,
		SizeBytes:   int64(len(in.Data)),
	}, chunks)
	if err != nil {
		return UploadResult{}, err
	}

	if s.search != nil {
		if err := s.search.IndexAll(chunks); err != nil {
			s.logger.Warn().Err(err).Str("upload_id", upload.ID).Msg("index upload chunks")
		}
	}
	s.logger.Info().Str("upload_id", upload.ID).Int("chunks", len(chunks)).Int64("size_bytes", upload.SizeBytes).Msg("upload stored")
	return UploadResult{Upload: upload, Documents: chunks}, nil
}
