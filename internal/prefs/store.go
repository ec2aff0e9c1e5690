// Package prefs persists the only two preferences that outlive a
// session: the dashboard view mode and the KPI card ordering. Both
// degrade to documented defaults when absent or corrupt; reading a
// preference is never an error surface.
package prefs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opsdeck/opsdeck/internal/cascade"
	"github.com/opsdeck/opsdeck/internal/metrics"
	_ "modernc.org/sqlite"
)

const (
	keyViewMode  = "view_mode"
	keyCardOrder = "card_order"
)

// Store is a SQLite-backed key/value preference store.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the preference database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open preferences database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init preferences schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ViewMode returns the persisted view mode, defaulting to founder when
// unset or unrecognizable.
func (s *Store) ViewMode() cascade.ViewMode {
	raw, err := s.get(keyViewMode)
	if err != nil {
		return cascade.ModeFounder
	}
	return cascade.ParseViewMode(raw)
}

// SetViewMode persists the view mode.
func (s *Store) SetViewMode(mode cascade.ViewMode) error {
	return s.set(keyViewMode, string(mode))
}

// CardOrder returns the persisted KPI card order, or the default order
// when unset or corrupt.
func (s *Store) CardOrder() []string {
	raw, err := s.get(keyCardOrder)
	if err != nil {
		return metrics.DefaultCardOrder
	}
	var order []string
	if err := json.Unmarshal([]byte(raw), &order); err != nil || len(order) == 0 {
		return metrics.DefaultCardOrder
	}
	return order
}

// SetCardOrder persists the KPI card order as JSON.
func (s *Store) SetCardOrder(order []string) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode card order: %w", err)
	}
	return s.set(keyCardOrder, string(data))
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("read preference %s: %w", key, err)
		}
		return "", err
	}
	return value, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write preference %s: %w", key, err)
	}
	return nil
}
