package scorecache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key prefix for cached pair scores.
const pairScoreKeyPrefix = "cohort:pairscore:"

// RedisStore is a Redis-backed score cache for deployments where several
// instances share inference results.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed score cache.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (float64, bool, error) {
	val, err := s.client.Get(ctx, pairScoreKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	score, err := strconv.ParseFloat(val, 64)
	if err != nil {
		// Corrupt entry: treat as a miss so it gets overwritten.
		return 0, false, nil
	}
	return score, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, score float64, ttl time.Duration) error {
	return s.client.Set(ctx, pairScoreKeyPrefix+key, strconv.FormatFloat(score, 'f', -1, 64), ttl).Err()
}
