// Package store persists the function definitions in a document store:
// memory, SQLite or MongoDB.
package store

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/pkg/metricskey"
	"github.com/effective-security/functic/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/functic", "store")

// ErrNotFound is returned when the function is not stored.
var ErrNotFound = errors.New("store: function not found")

// TimeNowFn returns the time of the updates.
var TimeNowFn = time.Now

// FunctionRecord is the stored function metadata.
type FunctionRecord struct {
	Name       string                   `json:"name" yaml:"name"`
	Definition tools.FunctionDefinition `json:"definition" yaml:"definition"`
	UpdatedAt  time.Time                `json:"updated_at" yaml:"updated_at"`
}

// Store is the repository of the function records.
type Store interface {
	// Kind returns the backend name: memory, sqlite or mongodb.
	Kind() string
	// Put inserts or replaces the record by name.
	Put(ctx context.Context, rec *FunctionRecord) error
	// Get returns the record by name, or ErrNotFound.
	Get(ctx context.Context, name string) (*FunctionRecord, error)
	// List returns the records sorted by name.
	List(ctx context.Context) ([]*FunctionRecord, error)
	// Delete removes the record by name, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error
	// Close releases the resources.
	Close() error
}

// Open returns the store for the connection string:
// mongodb://, mongodb+srv://, sqlite://<path> or memory://.
// The database is used by MongoDB, the table is the collection or table name.
func Open(ctx context.Context, connString, database, table string) (Store, error) {
	u, err := url.Parse(connString)
	if err != nil {
		return nil, errors.New("invalid connection string")
	}

	switch strings.ToLower(u.Scheme) {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		path := strings.TrimPrefix(connString, u.Scheme+"://")
		st, err := NewSQLite(ctx, path, table)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "mongodb", "mongodb+srv":
		st, err := OpenMongo(ctx, connString, database, table)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, errors.Newf("unsupported store scheme: %q", u.Scheme)
	}
}

// Sync stores the definitions, and returns the number of stored records.
func Sync(ctx context.Context, st Store, defs []tools.FunctionDefinition) (int, error) {
	now := TimeNowFn().UTC().Truncate(time.Millisecond)
	for i, def := range defs {
		rec := &FunctionRecord{
			Name:       def.Name,
			Definition: def,
			UpdatedAt:  now,
		}
		if err := st.Put(ctx, rec); err != nil {
			return i, errors.Wrapf(err, "failed to store function %q", def.Name)
		}
		metricskey.StatsFunctionsSynced.IncrCounter(1, st.Kind())
	}

	logger.ContextKV(ctx, xlog.INFO,
		"status", "synced",
		"store", st.Kind(),
		"functions", len(defs),
	)
	return len(defs), nil
}

func checkRecord(rec *FunctionRecord) error {
	if rec == nil || strings.TrimSpace(rec.Name) == "" {
		return errors.New("function name is required")
	}
	if rec.Definition.Name != "" && rec.Definition.Name != rec.Name {
		return errors.Newf("function name %q does not match definition %q", rec.Name, rec.Definition.Name)
	}
	return nil
}

func updatedAt(rec *FunctionRecord) time.Time {
	if rec.UpdatedAt.IsZero() {
		return TimeNowFn().UTC().Truncate(time.Millisecond)
	}
	return rec.UpdatedAt.UTC()
}
