package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/effective-security/functic/pkg/metricskey"
)

type entry struct {
	value   []byte
	expires time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

type inMemory struct {
	mu      sync.RWMutex
	storage map[string]*entry
	nowFn   func() time.Time
}

// NewMemory returns the in-process cache.
// Expired entries are removed on access.
func NewMemory() Cache {
	return newMemory(time.Now)
}

func newMemory(nowFn func() time.Time) *inMemory {
	return &inMemory{
		storage: make(map[string]*entry),
		nowFn:   nowFn,
	}
}

func (m *inMemory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.storage[key]
	m.mu.RUnlock()

	if ok && e.expired(m.nowFn()) {
		m.mu.Lock()
		if cur, ok := m.storage[key]; ok && cur == e {
			delete(m.storage, key)
		}
		m.mu.Unlock()
		ok = false
	}
	if !ok {
		metricskey.StatsCacheMisses.IncrCounter(1, "memory")
		return nil, ErrNotFound
	}
	metricskey.StatsCacheHits.IncrCounter(1, "memory")
	return bytes.Clone(e.value), nil
}

func (m *inMemory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := &entry{value: bytes.Clone(value)}
	if ttl > 0 {
		e.expires = m.nowFn().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.storage[key] = e
	return nil
}

func (m *inMemory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.storage, key)
	return nil
}

func (m *inMemory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.storage)
	return nil
}
