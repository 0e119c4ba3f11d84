// Package sqlite stores grammars in a SQLite database (pure Go driver, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/grammar"
)

const schema = `
CREATE TABLE IF NOT EXISTS grammars (
	name       TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store implements ports.GrammarStore on SQLite. Bodies are JSON documents.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return New(sqlDB)
}

// New wraps an existing connection and ensures the schema.
func New(sqlDB *sql.DB) (*Store, error) {
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts the grammar.
func (s *Store) Save(ctx context.Context, name string, g grammar.Grammar) error {
	if name == "" {
		return fmt.Errorf("grammar name is required")
	}
	body, err := grammar.Encode(g, grammar.FormatJSON)
	if err != nil {
		return fmt.Errorf("encode grammar: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO grammars (name, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
`, name, string(body), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save grammar: %w", err)
	}
	return nil
}

// Load reads and decodes the grammar.
func (s *Store) Load(ctx context.Context, name string) (grammar.Grammar, error) {
	var body string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT body FROM grammars WHERE name = ?`, name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGrammarNotFound
		}
		return nil, fmt.Errorf("load grammar: %w", err)
	}

	g, err := grammar.Decode([]byte(body), grammar.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("grammar %q: %w", name, err)
	}
	return g, nil
}

// Delete removes the grammar row.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM grammars WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete grammar: %w", err)
	}
	return nil
}

// List returns grammar names in order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT name FROM grammars ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list grammars: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan grammar name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grammars: %w", err)
	}
	return names, nil
}

// UpdatedAt returns when the grammar was last saved.
func (s *Store) UpdatedAt(ctx context.Context, name string) (time.Time, error) {
	var millis int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT updated_at FROM grammars WHERE name = ?`, name).Scan(&millis)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, domain.ErrGrammarNotFound
		}
		return time.Time{}, fmt.Errorf("load grammar timestamp: %w", err)
	}
	return time.UnixMilli(millis).UTC(), nil
}
