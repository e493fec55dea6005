// Package session stores captured text selections until they are submitted, dismissed or expire.
package session

import (
	"context"
	"errors"
	"time"
)

const DefaultTTL = 30 * time.Minute

var ErrNotFound = errors.New("selection not found or expired")

// RangeInfo locates a selection inside the rendered document. Offsets are byte offsets into the
// decoded text of the section whose heading carries Anchor.
type RangeInfo struct {
	Anchor      string `json:"anchor"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
}

// Record is a captured selection.
type Record struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspaceId"`
	Text        string     `json:"text"`
	Query       string     `json:"query,omitempty"`
	RangeInfo   *RangeInfo `json:"rangeInfo,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}
