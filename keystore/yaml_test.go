package keystore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		m, err := Parse([]byte(`
keys:
  - id: client-1
    secret: c2VjcmV0
    realm: Acquia
  - id: client-2
    secret: b3RoZXI=
`))
		require.NoError(t, err)
		assert.Equal(t, 2, m.Len())

		k, ok := m.Key("client-1")
		require.True(t, ok)
		assert.Equal(t, Key{ID: "client-1", Secret: "c2VjcmV0", Realm: "Acquia"}, k)
	})

	t.Run("empty document", func(t *testing.T) {
		m, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Len())
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("keys: ["))
		assert.Error(t, err)
	})

	t.Run("invalid secret", func(t *testing.T) {
		_, err := Parse([]byte("keys:\n  - id: a\n    secret: 'not base64!'\n"))
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.Contains(t, err.Error(), "keys[0]")
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := Parse([]byte("keys:\n  - id: a\n    secret: c2VjcmV0\n  - id: a\n    secret: c2VjcmV0\n"))
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.Contains(t, err.Error(), "keys[1]")
	})
}

func TestLoadFile(t *testing.T) {
	keys := []Key{
		{ID: "a", Secret: "c2VjcmV0", Realm: "r"},
		{ID: "b", Secret: "b3RoZXI="},
	}

	data, err := Marshal(keys)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "keys.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	m, err := LoadFile(path)
	require.NoError(t, err)

	secret, err := m.Secret(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "b3RoZXI=", secret)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
