package settings

import (
	"context"
	"sync"

	"gatehouse/pkg/platform/sentinel"
)

// InMemoryStore keeps settings in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{values: make(map[string]string)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return value, nil
}

func (s *InMemoryStore) GetAll(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *InMemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
