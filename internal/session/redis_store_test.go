package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), time.Minute)
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, s
}

func sampleRecord() Record {
	return Record{
		ID:          "sel_1",
		WorkspaceID: "ws_1",
		Text:        "Community Garden Funding",
		RangeInfo:   &RangeInfo{Anchor: "sec-1-grant-rfp-community-garden-funding", StartOffset: 11, EndOffset: 35},
		CreatedAt:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	if _, err := NewRedisStore("://nope", time.Minute); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRedisSaveGetDelete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	rec := sampleRecord()
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	if err := store.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRedisRecordExpires(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()
	if err := store.Save(ctx, sampleRecord()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ttl := s.TTL("selection:sel_1"); ttl != time.Minute {
		t.Fatalf("expected TTL of 1m, got %v", ttl)
	}
	s.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "sel_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	rec := sampleRecord()
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got, err := store.Get(ctx, rec.ID); err != nil || got.Text != rec.Text {
		t.Fatalf("expected stored record, got %+v (%v)", got, err)
	}

	now = now.Add(61 * time.Second)
	if _, err := store.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	_ = store.Save(ctx, sampleRecord())
	_ = store.Delete(ctx, "sel_1")
	if _, err := store.Get(ctx, "sel_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
