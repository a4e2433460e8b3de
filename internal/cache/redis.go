package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/quillhub/quill/pkg/config"
	"github.com/quillhub/quill/pkg/logging"
)

// Redis is a Store backed by a Redis server
type Redis struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed store
func NewRedis(cfg *config.RedisConfig) (*Redis, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Redis{client: client}, nil
}

// Get retrieves a value from cache
func (c *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

// Set sets a value in cache with TTL
func (c *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key from cache
func (c *Redis) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close closes the Redis connection
func (c *Redis) Close() error {
	return c.client.Close()
}

// Health checks Redis health
func (c *Redis) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
