// Package prefs is the persistent preference store shared with the
// player UI: a SQLite-backed key-value store that also holds the
// audiobook and tag records, and the relay mailbox used as the
// last-resort command channel.
package prefs

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a handle on the preference database.
type Store struct {
	db *sql.DB
}

// Options tunes the underlying SQLite connection.
type Options struct {
	BusyTimeout time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS prefs (
	key     TEXT PRIMARY KEY,
	value   BLOB NOT NULL,
	updated INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS audiobooks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	author      TEXT,
	folder      TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	position_ms INTEGER NOT NULL DEFAULT 0,
	speed       REAL NOT NULL DEFAULT 1.0,
	completed   INTEGER NOT NULL DEFAULT 0,
	updated     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS book_tags (
	book_id TEXT NOT NULL REFERENCES audiobooks(id) ON DELETE CASCADE,
	tag     TEXT NOT NULL REFERENCES tags(name) ON DELETE CASCADE,
	PRIMARY KEY (book_id, tag)
);
`

// Open opens (creating if necessary) the preference database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string, options Options) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}

	busyTimeoutMs := int(options.BusyTimeout / time.Millisecond)
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMs)); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Set writes a preference value, overwriting any previous one.
func (s *Store) Set(key string, value []byte) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("prefs: missing database connection")
	}

	_, err := s.db.Exec(`
		INSERT INTO prefs (key, value, updated)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated=excluded.updated
	`, key, value, time.Now().UnixMilli())

	return err
}

// Get reads a preference value. A missing key yields (nil, nil).
func (s *Store) Get(key string) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("prefs: missing database connection")
	}

	var value []byte
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Delete removes a preference key. Deleting a missing key is not an
// error.
func (s *Store) Delete(key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("prefs: missing database connection")
	}

	_, err := s.db.Exec(`DELETE FROM prefs WHERE key = ?`, key)
	return err
}
