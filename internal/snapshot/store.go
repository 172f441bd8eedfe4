// Package snapshot persists GameState checkpoints to SQLite: one row
// per game, overwritten on every turn change, so a restarted server
// can resume a game from its last known state.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"palmietopia/internal/engine"
	"palmietopia/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_snapshots (
	game_id    TEXT PRIMARY KEY,
	turn       INTEGER NOT NULL,
	state_json TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Store is a SQLite-backed session.SnapshotSink: one row per game,
// overwritten on every TurnChanged delta, keyed by game id.
type Store struct {
	db  *sql.DB
	log *logger.ColoredLogger
}

// Open connects to (creating if necessary) the SQLite database at
// path and ensures the snapshot table exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("snapshot: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_timeout=10000")
	if err != nil {
		return nil, fmt.Errorf("snapshot: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: create schema: %w", err)
	}

	log := logger.NewColoredLogger("Snapshot", logger.ColorBlue)
	log.Info("snapshot store ready at %s", path)
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot implements session.SnapshotSink: it overwrites the row
// for gameID with state's current turn and full JSON encoding.
func (s *Store) SaveSnapshot(gameID string, state *engine.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("snapshot: marshal state: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO game_snapshots (game_id, turn, state_json, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(game_id) DO UPDATE SET
		   turn = excluded.turn,
		   state_json = excluded.state_json,
		   updated_at = CURRENT_TIMESTAMP`,
		gameID, state.CurrentTurn, string(data),
	)
	if err != nil {
		return fmt.Errorf("snapshot: save %s: %w", gameID, err)
	}
	return nil
}

// LoadLatest returns the most recently saved GameState for gameID, or
// (nil, nil) if no snapshot exists — callers generate a fresh game in
// that case rather than treating it as an error.
func (s *Store) LoadLatest(gameID string) (*engine.GameState, error) {
	var data string
	err := s.db.QueryRow(
		`SELECT state_json FROM game_snapshots WHERE game_id = ?`, gameID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: load %s: %w", gameID, err)
	}

	var state engine.GameState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal %s: %w", gameID, err)
	}
	return &state, nil
}

// ListGameIDs returns every game id with a saved snapshot, for replay
// on server restart.
func (s *Store) ListGameIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT game_id FROM game_snapshots`)
	if err != nil {
		return nil, fmt.Errorf("snapshot: list games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("snapshot: scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
