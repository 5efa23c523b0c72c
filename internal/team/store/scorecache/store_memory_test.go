package scorecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type InMemorySuite struct {
	suite.Suite
	cache *InMemory
	ctx   context.Context
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.cache = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemorySuite) TestGetSet() {
	s.Run("miss on unknown key", func() {
		_, ok, err := s.cache.Get(s.ctx, "a|b")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("round trip", func() {
		s.Require().NoError(s.cache.Set(s.ctx, "a|b", 0.73, time.Hour))

		score, ok, err := s.cache.Get(s.ctx, "a|b")
		s.Require().NoError(err)
		s.True(ok)
		s.InDelta(0.73, score, 1e-9)
	})

	s.Run("set overwrites", func() {
		s.Require().NoError(s.cache.Set(s.ctx, "a|b", 0.1, time.Hour))
		s.Require().NoError(s.cache.Set(s.ctx, "a|b", 0.9, time.Hour))

		score, ok, err := s.cache.Get(s.ctx, "a|b")
		s.Require().NoError(err)
		s.True(ok)
		s.InDelta(0.9, score, 1e-9)
	})
}
