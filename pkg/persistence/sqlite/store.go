// Package sqlite provides a SQLite-backed customization store.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/displayctl/displayctl-go/pkg/persistence"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS customization (
	device_instance_id TEXT PRIMARY KEY,
	name               TEXT NOT NULL DEFAULT '',
	is_unison          INTEGER NOT NULL DEFAULT 0,
	range_lowest       INTEGER NOT NULL DEFAULT 0,
	range_highest      INTEGER NOT NULL DEFAULT 100,
	updated_at         TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);`

// Store implements persistence.Store using SQLite.
type Store struct {
	db *sql.DB
}

// Open creates a SQLite-backed store at the provided path.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite store: db path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite store: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open db: %w", err)
	}
	// Serialize writers; SQLite allows one at a time anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite store: init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns the stored customization.
func (s *Store) Load(deviceInstanceID string) (persistence.Customization, error) {
	var (
		c      persistence.Customization
		unison int
		lo, hi int
	)
	row := s.db.QueryRow(
		`SELECT name, is_unison, range_lowest, range_highest
		   FROM customization WHERE device_instance_id = ?`, deviceInstanceID)
	if err := row.Scan(&c.Name, &unison, &lo, &hi); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Customization{}, persistence.ErrNotFound
		}
		return persistence.Customization{}, fmt.Errorf("sqlite store: load: %w", err)
	}
	c.IsUnison = unison != 0
	c.RangeLowest = uint8(lo)
	c.RangeHighest = uint8(hi)
	return c, nil
}

// Save inserts or replaces the customization.
func (s *Store) Save(deviceInstanceID string, c persistence.Customization) error {
	if deviceInstanceID == "" {
		return persistence.ErrInvalidID
	}
	if err := c.Validate(); err != nil {
		return err
	}

	unison := 0
	if c.IsUnison {
		unison = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO customization (device_instance_id, name, is_unison, range_lowest, range_highest)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(device_instance_id) DO UPDATE SET
			name = excluded.name,
			is_unison = excluded.is_unison,
			range_lowest = excluded.range_lowest,
			range_highest = excluded.range_highest,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		deviceInstanceID, c.Name, unison, int(c.RangeLowest), int(c.RangeHighest))
	if err != nil {
		return fmt.Errorf("sqlite store: save: %w", err)
	}
	return nil
}

// DeviceIDs lists all device instance IDs with stored customization.
func (s *Store) DeviceIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT device_instance_id FROM customization ORDER BY device_instance_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: list: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite store: list: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Compile-time interface satisfaction check.
var _ persistence.Store = (*Store)(nil)
