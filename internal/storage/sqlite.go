package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const createContainersTable = `
CREATE TABLE IF NOT EXISTS containers (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

type sqliteBackend struct {
	db   *sql.DB
	name string
}

// OpenSQLite opens (and creates if needed) a SQLite database at path and
// returns a store whose container is the row named container.
func OpenSQLite(ctx context.Context, path, container string, logger *slog.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, createContainersTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialise sqlite schema: %w", err)
	}
	return newStore(container, &sqliteBackend{db: db, name: container}, logger), nil
}

func (s *sqliteBackend) read(ctx context.Context) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM containers WHERE name = ?`, s.name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage error reading container %q: %w", s.name, err)
	}
	return []byte(value), true, nil
}

func (s *sqliteBackend) write(ctx context.Context, data []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO containers (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.name, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("storage error writing container (rollback error: %v): %w", rbErr, err)
		}
		return fmt.Errorf("storage error writing container %q: %w", s.name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *sqliteBackend) close() error {
	return s.db.Close()
}
