package tokenindex

import (
	"context"
	"sync"
	"time"

	"gatehouse/pkg/platform/sentinel"
)

type memoryEntry struct {
	recordID  string
	expiresAt time.Time
}

// MemoryIndex is the in-process token index used when Redis is not
// configured. Expired entries are dropped lazily on lookup.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryIndex constructs an in-process token index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]memoryEntry), now: time.Now}
}

func (i *MemoryIndex) Register(_ context.Context, token, recordID string, ttl time.Duration) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[token] = memoryEntry{recordID: recordID, expiresAt: i.now().Add(ttl)}
	return nil
}

func (i *MemoryIndex) Resolve(_ context.Context, token string) (string, error) {
	i.mu.RLock()
	entry, ok := i.entries[token]
	i.mu.RUnlock()
	if !ok {
		return "", sentinel.ErrNotFound
	}
	if i.now().After(entry.expiresAt) {
		i.mu.Lock()
		delete(i.entries, token)
		i.mu.Unlock()
		return "", sentinel.ErrNotFound
	}
	return entry.recordID, nil
}

func (i *MemoryIndex) Remove(_ context.Context, token string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, token)
	return nil
}
