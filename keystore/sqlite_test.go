package keystore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "keys.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, path
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("put and lookup", func(t *testing.T) {
		s, _ := openTestSQLite(t)

		require.NoError(t, s.Put(ctx, Key{ID: "a", Secret: "c2VjcmV0", Realm: "Acquia"}))

		secret, err := s.Secret(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "c2VjcmV0", secret)

		k, err := s.Key(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "Acquia", k.Realm)

		_, err = s.Secret(ctx, "missing")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("put replaces", func(t *testing.T) {
		s, _ := openTestSQLite(t)

		require.NoError(t, s.Put(ctx, Key{ID: "a", Secret: "c2VjcmV0"}))
		require.NoError(t, s.Put(ctx, Key{ID: "a", Secret: "b3RoZXI=", Realm: "new"}))

		k, err := s.Key(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, Key{ID: "a", Secret: "b3RoZXI=", Realm: "new"}, k)
	})

	t.Run("invalid key rejected", func(t *testing.T) {
		s, _ := openTestSQLite(t)

		assert.ErrorIs(t, s.Put(ctx, Key{ID: "a", Secret: "!!"}), ErrInvalidKey)
		assert.ErrorIs(t, s.Import(ctx, []Key{{ID: "a", Secret: "c2VjcmV0"}, {Secret: "c2VjcmV0"}}), ErrInvalidKey)

		_, err := s.Secret(ctx, "a")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s, _ := openTestSQLite(t)

		require.NoError(t, s.Put(ctx, Key{ID: "a", Secret: "c2VjcmV0"}))
		require.NoError(t, s.Delete(ctx, "a"))
		require.NoError(t, s.Delete(ctx, "a"))

		_, err := s.Secret(ctx, "a")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("persists across reopen", func(t *testing.T) {
		s, path := openTestSQLite(t)

		require.NoError(t, s.Import(ctx, []Key{
			{ID: "a", Secret: "c2VjcmV0"},
			{ID: "b", Secret: "b3RoZXI="},
		}))
		require.NoError(t, s.Close())

		reopened, err := OpenSQLite(path)
		require.NoError(t, err)
		defer reopened.Close()

		secret, err := reopened.Secret(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "b3RoZXI=", secret)
	})
}
