package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brewmap/brewmap/pkg/errors"
	"github.com/brewmap/brewmap/pkg/logging"
	"github.com/brewmap/brewmap/pkg/venues"
)

// storageKey is the single fixed key the committed collection lives under.
// There is no versioning field and no migration path for the blob.
const storageKey = "breweries"

const schema = `
CREATE TABLE IF NOT EXISTS state (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// SQLite stores the committed collection as one JSON array in a key/value
// table of a local SQLite file.
type SQLite struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the SQLite store at path.
func Open(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WrapIO("create", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.WrapIO("open", path, err)
	}

	return &SQLite{db: db, path: path}, nil
}

// NewWithDB wraps an existing database handle. The caller owns schema setup;
// used by tests.
func NewWithDB(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// DefaultPath returns the conventional store location under the user's home
// directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapIO("open", "", err)
	}
	return filepath.Join(home, ".brewmap", "brewmap.db"), nil
}

// Load implements Store. A missing row or an unparseable blob both load as
// an empty collection.
func (s *SQLite) Load(ctx context.Context) (venues.Venues, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, storageKey).Scan(&blob)
	if err == sql.ErrNoRows {
		return venues.Venues{}, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}

	var vs venues.Venues
	if err := json.Unmarshal(blob, &vs); err != nil {
		logging.Warn().Err(err).Msg("stored collection is corrupt, starting empty")
		return venues.Venues{}, nil
	}
	return vs, nil
}

// Save implements Store.
func (s *SQLite) Save(ctx context.Context, vs venues.Venues) error {
	if vs == nil {
		vs = venues.Venues{}
	}
	blob, err := json.Marshal(vs)
	if err != nil {
		return errors.WrapIO("write", s.path, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		storageKey, blob)
	if err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}
