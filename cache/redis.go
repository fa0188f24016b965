package cache

import (
	"context"
	"path"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/pkg/metricskey"
	"github.com/redis/go-redis/v9"
)

// The redis cache keeps the values under `/<prefix>/cache/<key>`.
type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedis returns the cache backed by the Redis client.
// The cache owns the client, Close closes it.
func NewRedis(client *redis.Client, prefix string) Cache {
	return &redisCache{
		client: client,
		prefix: prefix,
	}
}

func (m *redisCache) key(key string) string {
	return path.Join("/", m.prefix, "cache", key)
}

func (m *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := m.client.Get(ctx, m.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metricskey.StatsCacheMisses.IncrCounter(1, "redis")
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to get %q from Redis", key)
	}
	metricskey.StatsCacheHits.IncrCounter(1, "redis")
	return data, nil
}

func (m *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := m.client.Set(ctx, m.key(key), value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to set %q in Redis", key)
	}
	return nil
}

func (m *redisCache) Delete(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, m.key(key)).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete %q from Redis", key)
	}
	return nil
}

func (m *redisCache) Close() error {
	return m.client.Close()
}
