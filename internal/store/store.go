package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"

	"github.com/gofrs/flock"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/rituals/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on rituals.updated_at
const currentSchemaVersion = 1

// Store provides durable storage for rituals.
// Uses SQLite with WAL mode and a single connection.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	lock   *flock.Flock
	closed bool
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database file is locked for the lifetime of the Store; a second Open
// of the same path, from this or another process, fails with
// STORAGE_UNAVAILABLE until the first Store is closed.
func Open(path string) (*Store, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, model.NewStorageUnavailableError("acquire database lock", err)
	}
	if !locked {
		return nil, model.NewStorageUnavailableError(fmt.Sprintf("database %s is in use by another process", path), nil)
	}

	db, err := openDB(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	return &Store{db: db, lock: lock}, nil
}

// OpenMemory creates a private in-memory database. Used by tests and dry runs.
func OpenMemory() (*Store, error) {
	db, err := openDB(":memory:")
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func openDB(dsn string) (*sql.DB, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, model.NewStorageUnavailableError("open database", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, model.NewStorageUnavailableError("connect to database", err)
	}

	// SQLite only supports one writer at a time; a single connection also
	// keeps an in-memory database alive for the Store's lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, model.NewStorageUnavailableError("apply pragmas", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, model.NewStorageUnavailableError("apply schema", err)
	}

	return db, nil
}

// Close closes the database connection and releases the file lock.
// Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.db == nil {
		s.closed = true
		return nil
	}
	s.closed = true

	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// conn returns the open database or STORAGE_UNAVAILABLE when closed.
// Callers must hold s.mu (read or write).
func (s *Store) conn(op string) (*sql.DB, error) {
	if s.closed || s.db == nil {
		return nil, model.NewStorageUnavailableError(op+": store is closed", nil)
	}
	return s.db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes updated_at so recency listings don't scan records.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_rituals_updated_at
		ON rituals(updated_at)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// schemaVersion reads PRAGMA user_version. Used for testing.
func (s *Store) schemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	return version, err
}
