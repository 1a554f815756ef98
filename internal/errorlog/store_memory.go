package errorlog

import (
	"context"
	"sync"
	"time"

	"gatehouse/pkg/platform/sentinel"
)

// InMemoryStore keeps error log entries in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Create(_ context.Context, entry Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID
	s.nextID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.entries = append(s.entries, entry)
	return entry.ID, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

func (s *InMemoryStore) ListUnresolved(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Entry{}
	for i := len(s.entries) - 1; i >= 0; i-- {
		if !s.entries[i].Resolved {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

func (s *InMemoryStore) Resolve(_ context.Context, id int64, resolvedBy string, resolvedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Resolved = true
			s.entries[i].ResolvedBy = resolvedBy
			t := resolvedAt
			s.entries[i].ResolvedAt = &t
			return nil
		}
	}
	return sentinel.ErrNotFound
}
