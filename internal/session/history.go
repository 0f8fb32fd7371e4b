package session

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/solvix/solvix/internal/config"
)

// HistoryEntry is one recorded input line.
type HistoryEntry struct {
	ID      int64
	Session string
	Input   string
	At      time.Time
}

// History records entered lines in a sqlite database shared across runs.
// Each History instance tags its rows with a fresh session id so entries
// from the same sitting can be told apart later.
type History struct {
	db      *sql.DB
	session string
}

// OpenHistory opens (creating if needed) the history database in dir.
func OpenHistory(dir string) (*History, error) {
	path := filepath.Join(dir, config.HistoryFileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session    TEXT NOT NULL,
	input      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	return &History{db: db, session: uuid.NewString()}, nil
}

// Session returns this run's session id.
func (h *History) Session() string { return h.session }

// Append records one input line.
func (h *History) Append(input string) error {
	_, err := h.db.Exec(
		"INSERT INTO history (session, input, created_at) VALUES (?, ?, ?)",
		h.session, input, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

// Recent returns up to n most recent entries, oldest first.
func (h *History) Recent(n int) ([]HistoryEntry, error) {
	rows, err := h.db.Query(
		"SELECT id, session, input, created_at FROM history ORDER BY id DESC LIMIT ?", n,
	)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Session, &e.Input, &e.At); err != nil {
			return nil, fmt.Errorf("reading history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	// Query order is newest-first for the LIMIT; callers want oldest-first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Prune keeps only the most recent limit rows. A limit of zero disables
// pruning.
func (h *History) Prune(limit int) error {
	if limit <= 0 {
		return nil
	}
	_, err := h.db.Exec(
		"DELETE FROM history WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT ?)", limit,
	)
	if err != nil {
		return fmt.Errorf("pruning history: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}
