// Package store persists the small amount of client state leaddesk keeps
// between runs: the bearer token and the API session cookies.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"leaddesk/internal/logging"

	_ "modernc.org/sqlite"
)

// TokenKey is the key the bearer token is stored under.
const TokenKey = "authToken"

// LocalStore is a SQLite-backed key/value and cookie store.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewLocalStore initializes the SQLite database at the given path.
// ":memory:" is accepted for tests.
func NewLocalStore(path string) (*LocalStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	store := &LocalStore{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.StoreDebug("opened local store at %s", path)
	return store, nil
}

// initialize creates the required tables.
func (s *LocalStore) initialize() error {
	kvTable := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	cookieTable := `
	CREATE TABLE IF NOT EXISTS cookies (
		origin TEXT NOT NULL,
		name TEXT NOT NULL,
		path TEXT NOT NULL DEFAULT '/',
		value TEXT NOT NULL,
		domain TEXT,
		expires_at INTEGER DEFAULT 0,
		secure INTEGER DEFAULT 0,
		http_only INTEGER DEFAULT 0,
		UNIQUE(origin, name, path)
	);
	CREATE INDEX IF NOT EXISTS idx_cookies_origin ON cookies(origin);
	`

	for _, table := range []string{kvTable, cookieTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *LocalStore) Path() string {
	return s.dbPath
}

// ========== Key/value ==========

// Get returns the value for key. ok is false when the key is absent.
func (s *LocalStore) Get(key string) (value string, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *LocalStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *LocalStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// ========== Token ==========

// Token returns the stored bearer token, or "" when none is stored.
func (s *LocalStore) Token() (string, error) {
	tok, _, err := s.Get(TokenKey)
	return tok, err
}

// SetToken stores the bearer token. An empty token clears it.
func (s *LocalStore) SetToken(token string) error {
	if token == "" {
		return s.ClearToken()
	}
	logging.StoreDebug("storing bearer token")
	return s.Set(TokenKey, token)
}

// ClearToken removes the stored bearer token.
func (s *LocalStore) ClearToken() error {
	logging.StoreDebug("clearing bearer token")
	return s.Delete(TokenKey)
}
