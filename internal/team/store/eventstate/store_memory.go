package eventstate

import (
	"context"
	"sync"
)

// InMemoryStore keeps event flags in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	active map[string]bool
}

// NewInMemory creates an empty in-memory event state store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{active: make(map[string]bool)}
}

func (s *InMemoryStore) SetActive(ctx context.Context, poolID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if active {
		s.active[poolID] = true
	} else {
		delete(s.active, poolID)
	}
	return nil
}

func (s *InMemoryStore) IsActive(ctx context.Context, poolID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[poolID], nil
}
