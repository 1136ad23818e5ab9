package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tokens.db")
	s, err := NewSQLiteStore(dbPath, DeriveKey("test-passphrase"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	pair := TokenPair{Access: "access-token", Refresh: "refresh-token"}
	require.NoError(t, s.Save(pair))

	got, ok := s.Load()
	assert.True(t, ok)
	assert.Equal(t, pair, got)
}

func TestLoadEmptyStore(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.Load()
	assert.False(t, ok)
}

func TestSaveOverwritesPreviousPair(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(TokenPair{Access: "old-access", Refresh: "old-refresh"}))
	require.NoError(t, s.Save(TokenPair{Access: "new-access", Refresh: "new-refresh"}))

	got, ok := s.Load()
	assert.True(t, ok)
	assert.Equal(t, TokenPair{Access: "new-access", Refresh: "new-refresh"}, got)
}

func TestClearRemovesBothTokens(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(TokenPair{Access: "a", Refresh: "r"}))
	require.NoError(t, s.Clear())

	_, ok := s.Load()
	assert.False(t, ok)
}

func TestClearIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())

	_, ok := s.Load()
	assert.False(t, ok)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tokens.db")
	key := DeriveKey("test-passphrase")

	s1, err := NewSQLiteStore(dbPath, key)
	require.NoError(t, err)
	require.NoError(t, s1.Save(TokenPair{Access: "a", Refresh: "r"}))
	require.NoError(t, s1.Close())

	s2, err := NewSQLiteStore(dbPath, key)
	require.NoError(t, err)
	defer s2.Close()

	got, ok := s2.Load()
	assert.True(t, ok)
	assert.Equal(t, TokenPair{Access: "a", Refresh: "r"}, got)
}

func TestLoadWithWrongKeyTreatedAsLoggedOut(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tokens.db")

	s1, err := NewSQLiteStore(dbPath, DeriveKey("right-passphrase"))
	require.NoError(t, err)
	require.NoError(t, s1.Save(TokenPair{Access: "a", Refresh: "r"}))
	require.NoError(t, s1.Close())

	// Undecryptable tokens must fail open to "logged out", not error out.
	s2, err := NewSQLiteStore(dbPath, DeriveKey("wrong-passphrase"))
	require.NoError(t, err)
	defer s2.Close()

	_, ok := s2.Load()
	assert.False(t, ok)
}

func TestUnavailableStorageTreatedAsLoggedOut(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tokens.db")
	s, err := NewSQLiteStore(dbPath, DeriveKey("test-passphrase"))
	require.NoError(t, err)
	require.NoError(t, s.Save(TokenPair{Access: "a", Refresh: "r"}))
	require.NoError(t, s.Close())

	_, ok := s.Load()
	assert.False(t, ok)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := DeriveKey("some passphrase")

	encoded, err := Encrypt([]byte("hello world"), key)
	require.NoError(t, err)
	assert.NotEqual(t, "hello world", encoded)

	plain, err := Decrypt(encoded, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), plain)
}

func TestDecryptGarbageFails(t *testing.T) {
	_, err := Decrypt("not base64 at all!!!", DeriveKey("k"))
	assert.Error(t, err)
}
