// Package scorecache persists computed semantic compatibility scores so the
// O(n^2) pairwise phase doesn't re-run inference for pairs it has already
// scored.
package scorecache

import (
	"context"
	"sync"
	"time"
)

// InMemory is a process-local score cache, used when Redis is not configured
// and in tests.
type InMemory struct {
	mu     sync.RWMutex
	scores map[string]float64
}

// NewInMemory builds an empty in-memory score cache.
func NewInMemory() *InMemory {
	return &InMemory{scores: make(map[string]float64)}
}

func (s *InMemory) Get(_ context.Context, key string) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.scores[key]
	return v, ok, nil
}

func (s *InMemory) Set(_ context.Context, key string, score float64, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[key] = score
	return nil
}
