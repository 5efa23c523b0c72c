package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"cohort/internal/team/models"
	"cohort/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestUpsert() {
	s.Run("insert then get", func() {
		m := &models.Member{UserID: "u1", Username: "alice01", DisplayName: "Alice", RoleTitle: models.RoleLeader}
		s.Require().NoError(s.store.Upsert(s.ctx, "pool-1", m))

		got, err := s.store.Get(s.ctx, "pool-1", "u1")
		s.Require().NoError(err)
		s.Equal("alice01", got.Username)
		s.Equal("Alice", got.DisplayName)
		s.Equal(models.RoleLeader, got.RoleTitle)
	})

	s.Run("replace on second upsert", func() {
		s.Require().NoError(s.store.Upsert(s.ctx, "pool-1", &models.Member{UserID: "u2", DisplayName: "Bob"}))
		s.Require().NoError(s.store.Upsert(s.ctx, "pool-1", &models.Member{UserID: "u2", DisplayName: "Bobby"}))

		got, err := s.store.Get(s.ctx, "pool-1", "u2")
		s.Require().NoError(err)
		s.Equal("Bobby", got.DisplayName)
	})

	s.Run("pools are isolated", func() {
		s.Require().NoError(s.store.Upsert(s.ctx, "pool-1", &models.Member{UserID: "u3"}))

		_, err := s.store.Get(s.ctx, "pool-2", "u3")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, "pool-1", "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestList() {
	s.Run("empty pool", func() {
		members, err := s.store.List(s.ctx, "pool-1")
		s.Require().NoError(err)
		s.Empty(members)
	})

	s.Run("ordered by user id", func() {
		s.Require().NoError(s.store.Upsert(s.ctx, "pool-1", &models.Member{UserID: "u3"}))
		s.Require().NoError(s.store.Upsert(s.ctx, "pool-1", &models.Member{UserID: "u1"}))
		s.Require().NoError(s.store.Upsert(s.ctx, "pool-1", &models.Member{UserID: "u2"}))

		members, err := s.store.List(s.ctx, "pool-1")
		s.Require().NoError(err)
		s.Require().Len(members, 3)
		s.Equal("u1", members[0].UserID)
		s.Equal("u2", members[1].UserID)
		s.Equal("u3", members[2].UserID)
	})

	s.Run("returned entries are copies", func() {
		s.Require().NoError(s.store.Upsert(s.ctx, "pool-2", &models.Member{UserID: "u1", DisplayName: "Alice"}))

		members, err := s.store.List(s.ctx, "pool-2")
		s.Require().NoError(err)
		members[0].DisplayName = "mutated"

		got, err := s.store.Get(s.ctx, "pool-2", "u1")
		s.Require().NoError(err)
		s.Equal("Alice", got.DisplayName)
	})
}

func (s *InMemoryStoreSuite) TestRemove() {
	s.Run("missing entry", func() {
		s.ErrorIs(s.store.Remove(s.ctx, "pool-1", "nobody"), sentinel.ErrNotFound)
	})

	s.Run("removes entry", func() {
		s.Require().NoError(s.store.Upsert(s.ctx, "pool-1", &models.Member{UserID: "u1"}))
		s.Require().NoError(s.store.Remove(s.ctx, "pool-1", "u1"))

		_, err := s.store.Get(s.ctx, "pool-1", "u1")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
