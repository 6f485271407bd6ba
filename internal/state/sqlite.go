package state

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Store persists runs and manifest fingerprints in SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// New creates an unopened store. A nil logger discards output.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{logger: logger}
}

// NewWithDB wraps an existing connection. Used by tests that drive a mock
// connection and by callers that manage the pool themselves.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Open connects to the SQLite database at path and runs migrations.
// Use ":memory:" for an in-memory database. Parent directories are
// created as needed.
func (s *Store) Open(path string) error {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	s.path = path

	if err := s.Migrate(); err != nil {
		db.Close()
		s.db = nil
		return err
	}

	s.logger.Debug("state store opened", "path", path)
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}
