package redis

import (
	"context"
	"fmt"

	"github.com/Rrens/collabhub/internal/config"
	"github.com/redis/go-redis/v9"
)

// Client is the shared go-redis connection used by the cache, the rate
// limiter and the scheduler lock
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis and fails fast if the server is unreachable
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}

	return &Client{rdb: rdb}, nil
}

// Ping verifies Redis connectivity
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection pool
func (c *Client) Close() error {
	return c.rdb.Close()
}
