package team

import (
	"context"
	"sort"
	"sync"
	"time"

	"cohort/internal/team/models"
	"cohort/pkg/platform/sentinel"
)

// InMemoryStore keeps teams in process memory, keyed by pool and team name.
// Suitable for tests and single-node runs; use PostgresStore in production.
type InMemoryStore struct {
	mu    sync.RWMutex
	pools map[string]map[string]*models.Team
}

// NewInMemory creates an empty in-memory team store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		pools: make(map[string]map[string]*models.Team),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teams := s.pools[team.PoolID]
	if teams == nil {
		teams = make(map[string]*models.Team)
		s.pools[team.PoolID] = teams
	}
	if _, exists := teams[team.Name]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range teams {
		if existing.ChannelName == team.ChannelName {
			return sentinel.ErrConflict
		}
	}

	stored := cloneTeam(team)
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	teams[team.Name] = stored
	team.CreatedAt = stored.CreatedAt
	team.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, poolID, name string) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, ok := s.pools[poolID][name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneTeam(team), nil
}

func (s *InMemoryStore) List(ctx context.Context, poolID string) ([]*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := make([]*models.Team, 0, len(s.pools[poolID]))
	for _, team := range s.pools[poolID] {
		teams = append(teams, cloneTeam(team))
	}
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Number != teams[j].Number {
			return teams[i].Number < teams[j].Number
		}
		return teams[i].Name < teams[j].Name
	})
	return teams, nil
}

func (s *InMemoryStore) Update(ctx context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.pools[team.PoolID][team.Name]
	if !ok {
		return sentinel.ErrNotFound
	}

	stored := cloneTeam(team)
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	s.pools[team.PoolID][team.Name] = stored
	team.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, poolID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pools[poolID][name]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.pools[poolID], name)
	return nil
}

func (s *InMemoryStore) FindByMember(ctx context.Context, poolID, userID string) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, team := range s.pools[poolID] {
		if _, ok := team.Members[userID]; ok {
			return cloneTeam(team), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) MaxNumber(ctx context.Context, poolID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	max := 0
	for _, team := range s.pools[poolID] {
		if n := team.TeamNumber(); n > max {
			max = n
		}
	}
	return max, nil
}

// cloneTeam deep-copies a team so callers cannot mutate stored state.
func cloneTeam(t *models.Team) *models.Team {
	clone := *t
	clone.Members = make(map[string]*models.Member, len(t.Members))
	for id, m := range t.Members {
		member := *m
		clone.Members[id] = &member
	}
	return &clone
}
