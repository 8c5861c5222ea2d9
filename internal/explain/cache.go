package explain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/explainer/server/internal/logger"
)

const cacheTTL = 24 * time.Hour

// RedisCache stores explanations in Redis keyed by a hash of the request.
// a cache hit never touches the ledger
type RedisCache struct {
	client *redis.Client
}

// creates a cache backed by the Redis instance at redisURL
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis")

	return &RedisCache{client: client}, nil
}

// closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// returns the underlying Redis client for shared infrastructure like
// rate limiter stores
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// returns the cached explanation, or empty string if not cached
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()

	if errors.Is(err, redis.Nil) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to get explanation from redis: %w", err)
	}

	return val, nil
}

// stores an explanation with the cache TTL
func (c *RedisCache) Set(ctx context.Context, key, explanation string) error {
	if err := c.client.Set(ctx, key, explanation, cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set explanation in redis: %w", err)
	}

	return nil
}

// derives the cache key from everything that changes the explanation:
// the passage, its surrounding context, and the model that would answer
func cacheKey(input Input, model string) string {
	h := sha256.New()
	h.Write([]byte(input.Passage))
	h.Write([]byte{0})
	h.Write([]byte(input.Context))
	h.Write([]byte{0})
	h.Write([]byte(model))

	return "explanation:" + hex.EncodeToString(h.Sum(nil))
}
