// Package sqlite persists the Record Store document as a single row in an
// embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"userdesk/internal/store/core"
	"userdesk/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const (
	// DefaultPath is used when no database file is configured.
	DefaultPath  = "userdesk.db"
	documentName = "users"
)

// Store keeps the encoded document in the `documents` table. Every write
// upserts the row inside a transaction.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the sqlite file at path and ensures the documents table.
func New(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverSQLite }

func (s *Store) ReadAll(ctx context.Context) (domain.Collection, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE name = ?`, documentName).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return core.Decode(payload)
}

func (s *Store) WriteAll(ctx context.Context, records domain.Collection) (retErr error) {
	data, err := core.Encode(records)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO documents(name,payload) VALUES(?,?) ON CONFLICT(name) DO UPDATE SET payload=excluded.payload`, documentName, data); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return tx.Commit()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
