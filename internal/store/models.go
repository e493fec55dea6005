package store

import "time"

// ReferenceDocument is a library entry that can be searched and selected as generation context.
// Chunks of an upload share UploadID and are ordered by ChunkIndex.
type ReferenceDocument struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	UploadID   *string   `json:"uploadId,omitempty"`
	ChunkIndex *int      `json:"chunkIndex,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Upload struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	BlobKey     string    `json:"blobKey"`
	SizeBytes   int64     `json:"sizeBytes"`
	ChunkCount  int       `json:"chunkCount"`
	CreatedAt   time.Time `json:"createdAt"`
}
