//go:build integration

package eventstate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"cohort/internal/team/store/eventstate"
	"cohort/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *eventstate.RedisStore
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.store = eventstate.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisStoreSuite) TestLifecycle() {
	active, err := s.store.IsActive(s.ctx, "pool-1")
	s.Require().NoError(err)
	s.False(active)

	s.Require().NoError(s.store.SetActive(s.ctx, "pool-1", true))

	active, err = s.store.IsActive(s.ctx, "pool-1")
	s.Require().NoError(err)
	s.True(active)

	s.Require().NoError(s.store.SetActive(s.ctx, "pool-1", false))

	active, err = s.store.IsActive(s.ctx, "pool-1")
	s.Require().NoError(err)
	s.False(active)
}

func (s *RedisStoreSuite) TestPoolsIndependent() {
	s.Require().NoError(s.store.SetActive(s.ctx, "pool-1", true))

	active, err := s.store.IsActive(s.ctx, "pool-2")
	s.Require().NoError(err)
	s.False(active)
}
