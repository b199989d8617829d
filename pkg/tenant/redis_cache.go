package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache shares the record cache between instances of the backend, so
// a suspension processed on one node is visible to all of them as soon as
// the cached entry is deleted.
type redisCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// DefaultRedisKeyPrefix namespaces cache keys in a shared Redis.
const DefaultRedisKeyPrefix = "store:record:"

// NewRedisCache creates a Redis-backed record cache. Records are stored as
// JSON under keyPrefix+identifier with the TTL applied on write.
func NewRedisCache(client redis.UniversalClient, keyPrefix string) Cache {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	return &redisCache{client: client, keyPrefix: keyPrefix}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Record, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		// Treat miss and transport errors the same: fall through to the
		// catalog, which remains the source of truth.
		return nil, false
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		_ = c.client.Del(ctx, c.keyPrefix+key).Err()
		return nil, false
	}
	return &record, true
}

func (c *redisCache) Set(ctx context.Context, key string, record *Record, ttl time.Duration) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	_ = c.client.Del(ctx, c.keyPrefix+key).Err()
}

// Close is a no-op; the Redis client is owned by the caller.
func (c *redisCache) Close() error { return nil }
