package eventstate

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis key prefix for event flags.
const eventKeyPrefix = "cohort:event:"

// RedisStore shares event state across instances. Flags have no TTL; closing
// an event deletes the key.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed event state store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SetActive(ctx context.Context, poolID string, active bool) error {
	key := eventKeyPrefix + poolID
	if active {
		return s.client.Set(ctx, key, "1", 0).Err()
	}
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) IsActive(ctx context.Context, poolID string) (bool, error) {
	_, err := s.client.Get(ctx, eventKeyPrefix+poolID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
