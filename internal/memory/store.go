// Package memory implements agent.Memory over a local SQLite database,
// grounded on kadirpekel-hector's SQLSessionService (database/sql +
// mattn/go-sqlite3, CREATE TABLE IF NOT EXISTS schema init, context-scoped
// queries) generalized from session-message storage to turn-summary
// key/value recall.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/yzzting/rrclaw/internal/agent"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS memories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    key TEXT NOT NULL,
    content TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memories_key ON memories(key);
CREATE INDEX IF NOT EXISTS idx_memories_created_at ON memories(created_at);
`

// Store is a SQLite-backed agent.Memory implementation.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// initializes its schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating memory db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening memory db: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing memory schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Store persists content under key, satisfying agent.Memory.
func (s *Store) Store(ctx context.Context, key, content, category string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (key, content, category, created_at) VALUES (?, ?, ?, ?)`,
		key, content, category, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("storing memory: %w", err)
	}
	return nil
}

// Recall returns up to topK memories relevant to query, most-recent-first
// among substring matches, falling back to the most recent entries overall
// when nothing matches — a simple relevance heuristic appropriate for a
// single-user local agent.
func (s *Store) Recall(ctx context.Context, query string, topK int) ([]agent.MemoryRecallResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, content, created_at FROM memories ORDER BY created_at DESC LIMIT 500`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying memories: %w", err)
	}
	defer rows.Close()

	var matched, fallback []agent.MemoryRecallResult
	needle := strings.ToLower(query)

	for rows.Next() {
		var r agent.MemoryRecallResult
		var createdAt time.Time
		if err := rows.Scan(&r.Key, &r.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning memory row: %w", err)
		}
		if needle != "" && strings.Contains(strings.ToLower(r.Content), needle) {
			if len(matched) < topK {
				matched = append(matched, r)
			}
		} else if len(fallback) < topK {
			fallback = append(fallback, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating memories: %w", err)
	}

	if len(matched) > 0 {
		return matched, nil
	}
	return fallback, nil
}

// Forget deletes every memory stored under key, reporting whether any row
// was actually removed.
func (s *Store) Forget(ctx context.Context, key string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("forgetting memory: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n > 0, nil
}

// Count returns the total number of stored memories.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting memories: %w", err)
	}
	return count, nil
}
