package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyCache implements usecase.IdempotencyCache using Redis. The
// durable store in postgres stays authoritative, this is only the fast
// path for replayed commands.
type IdempotencyCache struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyCache creates a new IdempotencyCache.
func NewIdempotencyCache(client *redis.Client) *IdempotencyCache {
	return &IdempotencyCache{
		client: client,
		prefix: "idempotency:",
	}
}

func (c *IdempotencyCache) key(tenantID, key string) string {
	return c.prefix + tenantID + ":" + key
}

// Get returns the cached result for (tenant, key), or nil on a miss.
func (c *IdempotencyCache) Get(ctx context.Context, tenantID, key string) ([]byte, error) {
	result, err := c.client.Get(ctx, c.key(tenantID, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Set caches a command result until the TTL expires.
func (c *IdempotencyCache) Set(ctx context.Context, tenantID, key string, result []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(tenantID, key), result, ttl).Err()
}
