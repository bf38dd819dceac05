// Package prefs persists user preferences that should survive restarts
// but do not belong in the config file: pane layout, list widths, and
// similar UI state. Values are JSON blobs in a small SQLite database.
package prefs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a preference key has no stored value.
var ErrNotFound = errors.New("preference not found")

// DB wraps the preferences database.
type DB struct {
	db *sqlx.DB
}

// Open opens (or creates) the preferences database at dbPath, enables
// WAL mode, and runs any pending schema migrations.
func Open(dbPath string) (*DB, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening prefs db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	d := &DB{db: db}
	if err := d.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (d *DB) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := d.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = d.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := d.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Set stores v under key as JSON, replacing any previous value.
func (d *DB) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding preference %q: %w", key, err)
	}

	_, err = d.db.Exec(
		`INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("storing preference %q: %w", key, err)
	}
	return nil
}

// Get loads the value stored under key into v. It returns ErrNotFound
// when the key has never been set.
func (d *DB) Get(key string, v any) error {
	var raw string
	err := d.db.Get(&raw, "SELECT value FROM prefs WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading preference %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decoding preference %q: %w", key, err)
	}
	return nil
}

// Delete removes a stored preference. Deleting a missing key is a
// no-op.
func (d *DB) Delete(key string) error {
	_, err := d.db.Exec("DELETE FROM prefs WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting preference %q: %w", key, err)
	}
	return nil
}
