package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rmax-ai/smoglight/pkg/session"
)

// Store manages the SQLite connection and schema. It holds exactly one
// row: the latest session snapshot. Saving replaces the previous snapshot
// in place, so no history accumulates.
type Store struct {
	db *sql.DB
}

// NewStore initializes the SQLite database connection.
// It enables WAL mode for concurrency and durability.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	// Enable WAL mode (Write-Ahead Logging)
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	// Single-row table: the CHECK constraint pins the row id so saves
	// always replace the same row.
	query := `
	CREATE TABLE IF NOT EXISTS session_snapshot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		ts_saved DATETIME NOT NULL,
		payload JSON NOT NULL
	);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create session_snapshot table: %w", err)
	}

	return nil
}

// SaveSnapshot writes the session snapshot, replacing any previous one.
func (s *Store) SaveSnapshot(ctx context.Context, snap *session.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
	INSERT INTO session_snapshot (id, ts_saved, payload) VALUES (1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET ts_saved = excluded.ts_saved, payload = excluded.payload;
	`
	if _, err := s.db.ExecContext(ctx, query, snap.TsSaved, payload); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the saved snapshot, or nil if none exists yet.
func (s *Store) LoadSnapshot(ctx context.Context) (*session.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM session_snapshot WHERE id = 1").Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// ClearSnapshot deletes the saved snapshot, if any.
func (s *Store) ClearSnapshot(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session_snapshot"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
