package appuser

import (
	"context"
	"sync"
	"time"

	"gatehouse/pkg/platform/sentinel"
)

// InMemoryStore keeps staff accounts in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1, users: make(map[int64]User)}
}

func (s *InMemoryStore) Create(_ context.Context, user User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return 0, sentinel.ErrConflict
		}
	}
	user.ID = s.nextID
	s.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	return user.ID, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]User, 0, len(s.users))
	for id := int64(1); id < s.nextID; id++ {
		if user, ok := s.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, sentinel.ErrNotFound
	}
	return user, nil
}

func (s *InMemoryStore) FindByUsername(_ context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return User{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, id int64, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if patch.Username != nil && *patch.Username != user.Username {
		for _, existing := range s.users {
			if existing.Username == *patch.Username {
				return sentinel.ErrConflict
			}
		}
	}
	patch.Apply(&user)
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.users, id)
	return nil
}
