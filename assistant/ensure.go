package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/cache"
	"github.com/effective-security/functic/pkg/metricskey"
	"github.com/effective-security/xlog"
)

// DefaultExpire is the default expiration of the cached assistant.
const DefaultExpire = 15 * time.Minute

// IDPrefix is the prefix of the assistant IDs.
const IDPrefix = "asst_"

const pageSize = 100

// Option configures Ensure.
type Option func(*options)

type options struct {
	cache  cache.Cache
	expire time.Duration
	force  bool
	create *CreateRequest
}

// WithCache sets the cache of the assistants.
func WithCache(c cache.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithExpire sets the expiration of the cached assistant.
func WithExpire(expire time.Duration) Option {
	return func(o *options) {
		o.expire = expire
	}
}

// WithForce skips the cache lookup.
func WithForce(force bool) Option {
	return func(o *options) {
		o.force = force
	}
}

// WithCreate creates the assistant if it is not found.
// The assistant name defaults to the name being ensured.
func WithCreate(req *CreateRequest) Option {
	return func(o *options) {
		o.create = req
	}
}

// CacheKey returns the cache key of the assistant.
func CacheKey(idOrName string) string {
	return "openai:assistant:" + idOrName
}

// Ensure returns the assistant by ID or name:
// from the cache, then by ID if the value has `asst_` prefix,
// then by name from the list of the assistants.
// If not found, the assistant is created when WithCreate is provided,
// otherwise ErrAssistantNotFound is returned.
func Ensure(ctx context.Context, api API, idOrName string, opts ...Option) (*Assistant, error) {
	o := &options{expire: DefaultExpire}
	for _, opt := range opts {
		opt(o)
	}

	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, errors.New("assistant ID or name is required")
	}

	key := CacheKey(idOrName)
	if !o.force && o.cache != nil {
		cached, err := cache.GetJSON[Assistant](ctx, o.cache, key)
		if err == nil {
			defer metricskey.PerfAssistantEnsure.MeasureSince(time.Now(), "cache")
			return cached, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			logger.ContextKV(ctx, xlog.WARNING,
				"reason", "cache_get",
				"assistant", idOrName,
				"err", err.Error(),
			)
		}
	}

	started := time.Now()
	a, source, err := find(ctx, api, idOrName)
	if err != nil {
		return nil, err
	}

	if a == nil {
		if o.create == nil {
			return nil, errors.Wrapf(ErrAssistantNotFound, "assistant %q", idOrName)
		}
		req := *o.create
		if req.Name == "" {
			req.Name = idOrName
		}
		a, err = api.Create(ctx, &req)
		if err != nil {
			return nil, err
		}
		source = "create"
	}
	metricskey.PerfAssistantEnsure.MeasureSince(started, source)

	if o.cache != nil {
		if err = cache.SetJSON(ctx, o.cache, key, a, o.expire); err != nil {
			logger.ContextKV(ctx, xlog.WARNING,
				"reason", "cache_set",
				"assistant", idOrName,
				"err", err.Error(),
			)
		}
	}
	return a, nil
}

// find returns the assistant by ID or name, or nil if not found.
func find(ctx context.Context, api API, idOrName string) (*Assistant, string, error) {
	if strings.HasPrefix(idOrName, IDPrefix) {
		a, err := api.Get(ctx, idOrName)
		if err == nil {
			return a, "id", nil
		}
		if !errors.Is(err, ErrAssistantNotFound) {
			return nil, "", err
		}
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "not_found_by_id",
			"assistant", idOrName,
		)
	}

	after := ""
	for {
		page, err := api.List(ctx, after, pageSize)
		if err != nil {
			return nil, "", err
		}
		for _, a := range page.Data {
			if a != nil && a.Name == idOrName {
				return a, "name", nil
			}
		}
		if !page.HasMore || page.LastID == nil || *page.LastID == "" || *page.LastID == after {
			return nil, "", nil
		}
		after = *page.LastID
	}
}
