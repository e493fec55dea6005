package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is used when no Redis is configured. Expired records are dropped lazily.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{records: map[string]memoryEntry{}, ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.records[rec.ID] = memoryEntry{rec: rec, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.records[id]
	if !ok || !s.now().Before(entry.expiresAt) {
		delete(s.records, id)
		return Record{}, ErrNotFound
	}
	return entry.rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) sweepLocked() {
	now := s.now()
	for id, entry := range s.records {
		if !now.Before(entry.expiresAt) {
			delete(s.records, id)
		}
	}
}
