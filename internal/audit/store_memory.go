package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps audit entries in process memory. Used when no durable
// store is configured; guarded because requests run concurrently.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > ListCap {
		limit = ListCap
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
