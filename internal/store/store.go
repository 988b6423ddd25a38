// Package store persists OAuth state and per-user access tokens in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return migrate(db)
}

// OpenMemory opens a private in-memory database.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// every connection would get its own empty database
	db.SetMaxOpenConns(1)
	return migrate(db)
}

func migrate(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS auth_states (
    state TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
CREATE TABLE IF NOT EXISTS access_tokens (
    user_id TEXT PRIMARY KEY,
    token TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *Store) Close() error { return s.db.Close() }

// SaveAuthState remembers which user started an OAuth flow with state.
func (s *Store) SaveAuthState(ctx context.Context, state, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_states (state, user_id) VALUES (?, ?)`, state, userID)
	if err != nil {
		return fmt.Errorf("saving auth state: %w", err)
	}
	return nil
}

// ConsumeAuthState returns the user that owns state and forgets it.
func (s *Store) ConsumeAuthState(ctx context.Context, state string) (string, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM auth_states WHERE state = ?`, state).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading auth state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM auth_states WHERE state = ?`, state); err != nil {
		return "", false, fmt.Errorf("deleting auth state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("commit: %w", err)
	}
	return userID, true, nil
}

func (s *Store) SaveToken(ctx context.Context, userID, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO access_tokens (user_id, token) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET token = excluded.token, updated_at = datetime('now')`,
		userID, token)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// Token returns the user's access token, if any.
func (s *Store) Token(ctx context.Context, userID string) (string, bool, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM access_tokens WHERE user_id = ?`, userID).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading token: %w", err)
	}
	return token, true, nil
}

func (s *Store) DeleteToken(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}
