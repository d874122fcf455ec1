// Package journal records completed moves in a local SQLite database so
// `mvvid history` can show what was filed where. It is tool-local
// bookkeeping only; the authoritative library state lives in the Plex
// server's own database.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS moves (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	source      TEXT NOT NULL,
	destination TEXT NOT NULL,
	section     TEXT NOT NULL,
	mode        TEXT NOT NULL,
	bytes       INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_moves_created_at ON moves(created_at DESC);
`

// Entry is one recorded move.
type Entry struct {
	ID          int64
	RunID       string
	Source      string
	Destination string
	Section     string
	Mode        string
	Bytes       int64
	CreatedAt   time.Time
}

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the journal database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("journal path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one completed move. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO moves (run_id, source, destination, section, mode, bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID, entry.Source, entry.Destination, entry.Section, entry.Mode, entry.Bytes,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record move: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, source, destination, section, mode, bytes, created_at
		 FROM moves ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Source, &entry.Destination,
			&entry.Section, &entry.Mode, &entry.Bytes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			entry.CreatedAt = ts
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
