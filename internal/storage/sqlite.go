package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/logger"
)

// Compile-time interface check.
var _ domain.ProgramStore = (*SQLiteStore)(nil)

const schema = `
	CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
`

// SQLiteStore keeps the recent list as one JSON value in a key-value table,
// under domain.RecentProgramsKey.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger

	// mu serializes read-modify-write of the list.
	mu sync.Mutex
}

// DefaultDBPath returns the default database location.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "dojotimer", "dojotimer.sqlite")
}

// OpenSQLite opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway store.
func OpenSQLite(path string, log *logger.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection so ":memory:" is a single database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Debug("sqlite store opened at %s", path)
	return &SQLiteStore{db: db, log: log}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Recent returns the stored programs, most recent first.
func (s *SQLiteStore) Recent(ctx context.Context) ([]domain.Program, error) {
	return s.load(ctx)
}

// Get retrieves a program by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Program, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return find(list, id)
}

// Touch stores program at the front of the list.
func (s *SQLiteStore) Touch(ctx context.Context, program domain.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := s.save(ctx, touch(list, program)); err != nil {
		return err
	}
	s.log.Debug("touched program %s", program.ID)
	return nil
}

// Delete removes a program by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	list, err = remove(list, id)
	if err != nil {
		return err
	}
	return s.save(ctx, list)
}

func (s *SQLiteStore) load(ctx context.Context) ([]domain.Program, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, domain.RecentProgramsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.Program{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", domain.RecentProgramsKey, err)
	}

	var list []domain.Program
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", domain.RecentProgramsKey, err)
	}
	return list, nil
}

func (s *SQLiteStore) save(ctx context.Context, list []domain.Program) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", domain.RecentProgramsKey, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, domain.RecentProgramsKey, string(raw))
	if err != nil {
		return fmt.Errorf("store %s: %w", domain.RecentProgramsKey, err)
	}
	return nil
}
