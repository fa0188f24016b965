package store

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

type inMemory struct {
	mu      sync.RWMutex
	storage map[string][]byte
}

// NewMemory returns the in-process store.
func NewMemory() Store {
	return &inMemory{
		storage: make(map[string][]byte),
	}
}

func (m *inMemory) Kind() string {
	return "memory"
}

func (m *inMemory) Put(_ context.Context, rec *FunctionRecord) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	cp := *rec
	cp.UpdatedAt = updatedAt(rec)

	// the records are kept encoded, the callers can not mutate them
	data, err := json.Marshal(&cp)
	if err != nil {
		return errors.Wrapf(err, "failed to encode function %q", rec.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.storage[rec.Name] = data
	return nil
}

func (m *inMemory) Get(_ context.Context, name string) (*FunctionRecord, error) {
	m.mu.RLock()
	data, ok := m.storage[name]
	m.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "function %q", name)
	}
	return decodeRecord(data)
}

func (m *inMemory) List(_ context.Context) ([]*FunctionRecord, error) {
	m.mu.RLock()
	list := make([][]byte, 0, len(m.storage))
	for _, data := range m.storage {
		list = append(list, data)
	}
	m.mu.RUnlock()

	res := make([]*FunctionRecord, 0, len(list))
	for _, data := range list {
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	slices.SortFunc(res, func(a, b *FunctionRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
	return res, nil
}

func (m *inMemory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.storage[name]; !ok {
		return errors.Wrapf(ErrNotFound, "function %q", name)
	}
	delete(m.storage, name)
	return nil
}

func (m *inMemory) Close() error {
	return nil
}

func decodeRecord(data []byte) (*FunctionRecord, error) {
	rec := new(FunctionRecord)
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, errors.Wrap(err, "failed to decode function")
	}
	return rec, nil
}
