package keystore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     Key
		wantErr bool
	}{
		{"valid", Key{ID: "a", Secret: "c2VjcmV0"}, false},
		{"empty secret decodes", Key{ID: "a", Secret: ""}, false},
		{"empty id", Key{Secret: "c2VjcmV0"}, true},
		{"not base64", Key{ID: "a", Secret: "not base64!"}, true},
		{"non-canonical padding", Key{ID: "a", Secret: "YR=="}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup", func(t *testing.T) {
		m := NewMemory(Key{ID: "a", Secret: "c2VjcmV0", Realm: "r"})

		secret, err := m.Secret(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "c2VjcmV0", secret)

		_, err = m.Secret(ctx, "missing")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("put and delete", func(t *testing.T) {
		var m Memory

		require.NoError(t, m.Put(Key{ID: "a", Secret: "c2VjcmV0"}))
		assert.Equal(t, 1, m.Len())

		assert.ErrorIs(t, m.Put(Key{ID: "b", Secret: "!!"}), ErrInvalidKey)
		assert.Equal(t, 1, m.Len())

		require.NoError(t, m.Put(Key{ID: "a", Secret: "b3RoZXI="}))
		secret, err := m.Secret(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "b3RoZXI=", secret)

		m.Delete("a")
		m.Delete("a")
		assert.Equal(t, 0, m.Len())

		_, ok := m.Key("a")
		assert.False(t, ok)
	})

	t.Run("concurrent access", func(t *testing.T) {
		m := NewMemory()

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, m.Put(Key{ID: "k", Secret: "c2VjcmV0"}))
				_, _ = m.Secret(ctx, "k")
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, m.Len())
	})
}
