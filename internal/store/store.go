package store

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Fixed storage keys for the persisted token pair. Absence of either key
// means "logged out".
const (
	accessTokenKey  = "ACCESS_TOKEN"
	refreshTokenKey = "REFRESH_TOKEN"
)

// TokenPair is the durable access/refresh token record that survives
// application restarts.
type TokenPair struct {
	Access  string
	Refresh string
}

// TokenStore defines the interface for token-pair persistence.
type TokenStore interface {
	Save(pair TokenPair) error
	Load() (TokenPair, bool)
	Clear() error
	Close() error
}

// SQLiteStore implements TokenStore using SQLite with encrypted values.
type SQLiteStore struct {
	db            *sql.DB
	encryptionKey []byte
	mu            sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based token store.
// The dbPath is the path to the SQLite database file.
// The encryptionKey is used to encrypt/decrypt token values at rest.
func NewSQLiteStore(dbPath string, encryptionKey []byte) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set file permissions (only works on creation)
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		// Ignore error if file doesn't exist yet
	}

	store := &SQLiteStore{
		db:            db,
		encryptionKey: encryptionKey,
	}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS tokens (
		name TEXT PRIMARY KEY,
		encrypted_value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create tokens table: %w", err)
	}
	return nil
}

// Save writes the access and refresh tokens in a single transaction so a
// reader never observes one without the other.
func (s *SQLiteStore) Save(pair TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encAccess, err := Encrypt([]byte(pair.Access), s.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encRefresh, err := Encrypt([]byte(pair.Refresh), s.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
	INSERT INTO tokens (name, encrypted_value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(name) DO UPDATE SET
		encrypted_value = excluded.encrypted_value,
		updated_at = excluded.updated_at;
	`
	if _, err := tx.Exec(upsert, accessTokenKey, encAccess); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	if _, err := tx.Exec(upsert, refreshTokenKey, encRefresh); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit token save: %w", err)
	}
	return nil
}

// Load returns the last-saved token pair. Any storage failure or a missing
// key is reported as absent so the caller falls back to logged-out state.
func (s *SQLiteStore) Load() (TokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	access, ok := s.loadValue(accessTokenKey)
	if !ok {
		return TokenPair{}, false
	}
	refresh, ok := s.loadValue(refreshTokenKey)
	if !ok {
		return TokenPair{}, false
	}

	return TokenPair{Access: access, Refresh: refresh}, true
}

func (s *SQLiteStore) loadValue(name string) (string, bool) {
	var encrypted string
	err := s.db.QueryRow(
		"SELECT encrypted_value FROM tokens WHERE name = ?", name,
	).Scan(&encrypted)

	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", name).Msg("token store unavailable, treating as logged out")
		return "", false
	}

	plain, err := Decrypt(encrypted, s.encryptionKey)
	if err != nil {
		log.Warn().Err(err).Str("key", name).Msg("failed to decrypt stored token, treating as logged out")
		return "", false
	}

	return string(plain), true
}

// Clear removes both tokens. Clearing an already-empty store is a no-op.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"DELETE FROM tokens WHERE name IN (?, ?)", accessTokenKey, refreshTokenKey,
	)
	if err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
