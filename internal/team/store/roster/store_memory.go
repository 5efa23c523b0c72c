package roster

import (
	"context"
	"sort"
	"sync"

	"cohort/internal/team/models"
	"cohort/pkg/platform/sentinel"
)

// InMemoryStore keeps roster entries in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	pools map[string]map[string]*models.Member
}

// NewInMemory creates an empty in-memory roster store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		pools: make(map[string]map[string]*models.Member),
	}
}

func (s *InMemoryStore) Upsert(ctx context.Context, poolID string, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.pools[poolID]
	if entries == nil {
		entries = make(map[string]*models.Member)
		s.pools[poolID] = entries
	}
	copied := *member
	entries[member.UserID] = &copied
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, poolID, userID string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	member, ok := s.pools[poolID][userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *member
	return &copied, nil
}

func (s *InMemoryStore) List(ctx context.Context, poolID string) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]*models.Member, 0, len(s.pools[poolID]))
	for _, member := range s.pools[poolID] {
		copied := *member
		members = append(members, &copied)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members, nil
}

func (s *InMemoryStore) Remove(ctx context.Context, poolID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pools[poolID][userID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.pools[poolID], userID)
	return nil
}
