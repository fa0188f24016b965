// Package cache provides the byte caches used by memoized lookups:
// an in-process memory cache and a Redis cache.
package cache

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/functic", "cache")

// ErrNotFound is returned when the key is missing or expired.
var ErrNotFound = errors.New("cache: not found")

// Cache stores values with expiration.
type Cache interface {
	// Get returns the value, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the value, ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key.
	Delete(ctx context.Context, key string) error
	// Close releases the resources.
	Close() error
}

// Open returns the cache for the URL:
// memory:// or redis://[[user]:password@]host[:port][/db][?prefix=name]
func Open(rawURL string) (Cache, error) {
	if rawURL == "" {
		rawURL = "memory://"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid cache URL")
	}

	switch strings.ToLower(u.Scheme) {
	case "memory":
		return NewMemory(), nil
	case "redis", "rediss":
		prefix := u.Query().Get("prefix")
		q := u.Query()
		q.Del("prefix")
		u.RawQuery = q.Encode()

		opts, err := redis.ParseURL(u.String())
		if err != nil {
			return nil, errors.Wrap(err, "invalid redis URL")
		}
		logger.KV(xlog.INFO,
			"status", "redis",
			"addr", opts.Addr,
			"db", opts.DB,
		)
		return NewRedis(redis.NewClient(opts), prefix), nil
	default:
		return nil, errors.Newf("unsupported cache scheme: %q", u.Scheme)
	}
}

// GetJSON returns the cached value decoded from JSON.
func GetJSON[T any](ctx context.Context, c Cache, key string) (*T, error) {
	data, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	v := new(T)
	if err = json.Unmarshal(data, v); err != nil {
		return nil, errors.Wrapf(err, "failed to decode cached value %q", key)
	}
	return v, nil
}

// SetJSON stores the value encoded as JSON.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode value %q", key)
	}
	return c.Set(ctx, key, data, ttl)
}
