package cache

import (
	"database/sql"
	"time"

	"github.com/teranos/bomx/db"
	"github.com/teranos/bomx/errors"
)

// Store is the SQLite persistent tier. It holds the only durable state the
// pipeline keeps: key, value, expiry.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS lookup_cache (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// OpenStore opens (creating if necessary) the cache database at path
func OpenStore(path string) (*Store, error) {
	conn, err := db.Open(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open cache database %s", path)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to create cache schema")
	}

	return &Store{db: conn}, nil
}

// NewStore wraps an existing database handle (tests use an in-memory one)
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "failed to create cache schema")
	}
	return &Store{db: db}, nil
}

// Get returns the value and expiry for key. A missing key yields
// errors.ErrNotFound. A zero expiry means the entry never expires.
func (s *Store) Get(key string) ([]byte, time.Time, error) {
	var value []byte
	var expiresAt sql.NullTime

	err := s.db.QueryRow(
		`SELECT value, expires_at FROM lookup_cache WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, errors.NewNotFoundError("cache key %s", key)
	}
	if err != nil {
		return nil, time.Time{}, errors.Wrap(err, "failed to read cache entry")
	}

	var expiry time.Time
	if expiresAt.Valid {
		expiry = expiresAt.Time
	}
	return value, expiry, nil
}

// Put upserts a cache entry. A zero expiresAt is stored as NULL (no expiry).
func (s *Store) Put(key string, value []byte, expiresAt time.Time) error {
	var expiry sql.NullTime
	if !expiresAt.IsZero() {
		expiry = sql.NullTime{Time: expiresAt, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO lookup_cache (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			created_at = CURRENT_TIMESTAMP
	`, key, value, expiry)
	if err != nil {
		return errors.Wrap(err, "failed to write cache entry")
	}
	return nil
}

// Purge removes entries that expired before now
func (s *Store) Purge(now time.Time) (int, error) {
	res, err := s.db.Exec(
		`DELETE FROM lookup_cache WHERE expires_at IS NOT NULL AND expires_at < ?`, now,
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to purge expired cache entries")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
