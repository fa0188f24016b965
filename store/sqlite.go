package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	// register the sqlite driver
	_ "modernc.org/sqlite"
)

var tableRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,63}$`)

// SQLite persists the function records in a SQLite table.
type SQLite struct {
	db    *sql.DB
	table string
}

// NewSQLite opens (or creates) the SQLite database at path,
// and creates the table if it does not exist.
func NewSQLite(ctx context.Context, path, table string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if !tableRegex.MatchString(table) {
		return nil, errors.Newf("invalid table name: %q", table)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrapf(err, "failed to create folder %q", dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite")
	}

	if _, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to set WAL mode")
	}

	schema := `
CREATE TABLE IF NOT EXISTS ` + table + ` (
	name TEXT PRIMARY KEY,
	definition TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}

	logger.KV(xlog.INFO,
		"status", "opened",
		"store", "sqlite",
		"path", path,
		"table", table,
	)

	return &SQLite{
		db:    db,
		table: table,
	}, nil
}

func (s *SQLite) Kind() string {
	return "sqlite"
}

func (s *SQLite) Put(ctx context.Context, rec *FunctionRecord) error {
	if err := checkRecord(rec); err != nil {
		return err
	}

	def, err := json.Marshal(rec.Definition)
	if err != nil {
		return errors.Wrapf(err, "failed to encode function %q", rec.Name)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO `+s.table+` (name, definition, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	definition = excluded.definition,
	updated_at = excluded.updated_at`,
		rec.Name,
		string(def),
		updatedAt(rec).Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to store function %q", rec.Name)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, name string) (*FunctionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT name, definition, updated_at
FROM `+s.table+`
WHERE name = ?`, name)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "function %q", name)
		}
		return nil, errors.Wrapf(err, "failed to get function %q", name)
	}
	return rec, nil
}

func (s *SQLite) List(ctx context.Context) ([]*FunctionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, definition, updated_at
FROM `+s.table+`
ORDER BY name ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list functions")
	}
	defer rows.Close()

	var res []*FunctionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list functions")
	}
	return res, nil
}

func (s *SQLite) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE name = ?`, name)
	if err != nil {
		return errors.Wrapf(err, "failed to delete function %q", name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(ErrNotFound, "function %q", name)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*FunctionRecord, error) {
	var (
		name    string
		def     string
		updated string
	)
	if err := row.Scan(&name, &def, &updated); err != nil {
		return nil, err
	}

	rec := &FunctionRecord{Name: name}
	if err := json.Unmarshal([]byte(def), &rec.Definition); err != nil {
		return nil, errors.Wrapf(err, "failed to decode function %q", name)
	}
	t, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse updated_at of %q", name)
	}
	rec.UpdatedAt = t
	return rec, nil
}
