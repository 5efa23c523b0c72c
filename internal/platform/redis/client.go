// Package redis owns the shared Redis connection used by the event-state
// store and the pair-score cache.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"cohort/internal/platform/config"
)

// Client embeds the go-redis client so stores can take it directly while the
// server keeps a handle for health checks and shutdown.
type Client struct {
	*redis.Client
}

// New connects and pings Redis. A nil client with a nil error means Redis is
// not configured; event state then falls back to the in-memory store and
// pair-score caching is disabled.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
