package hmacauth

import (
	"crypto/sha256"
	"hash"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentifier(t *testing.T) {
	t.Run("default range", func(t *testing.T) {
		id, err := NewIdentifier(sha256.New, 1, 2)
		require.NoError(t, err)

		signers := id.Signers()
		require.Len(t, signers, 2)
		assert.Equal(t, 1, signers[0].Version())
		assert.Equal(t, 2, signers[1].Version())
	})

	t.Run("unknown versions are skipped", func(t *testing.T) {
		id, err := NewIdentifier(sha256.New, 2, 9)
		require.NoError(t, err)

		require.Len(t, id.Signers(), 1)
		assert.Equal(t, 2, id.Signers()[0].Version())
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := NewIdentifier(sha256.New, 2, 1)
		assert.ErrorIs(t, err, ErrInvalidVersionRange)
	})
}

func TestIdentify(t *testing.T) {
	id, err := NewIdentifier(nil, 1, 2)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		version int
	}{
		{"v1", "Acquia myid:c2lnbmF0dXJl", 1},
		{"v2", `acquia-http-hmac id="a",nonce="n",realm="r",signature="c2ln",version="2.0"`, 2},
		{"v2 any order", `acquia-http-hmac version="2.0",id="a"`, 2},
		{"unknown scheme", "Bearer abc", 0},
		{"v2 wrong version", `acquia-http-hmac version="3.0"`, 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := id.Identify(tt.header)
			if tt.version == 0 {
				assert.Nil(t, s)
				return
			}

			require.NotNil(t, s)
			assert.Equal(t, tt.version, s.Version())
		})
	}

	t.Run("only v1 in range", func(t *testing.T) {
		v1only, err := NewIdentifier(nil, 1, 1)
		require.NoError(t, err)

		assert.Nil(t, v1only.Identify(`acquia-http-hmac version="2.0"`))
		assert.NotNil(t, v1only.Identify("Acquia id:c2ln"))
	})
}

type catchAllSigner struct {
	*V1Signer
	version int
}

func (s catchAllSigner) Version() int        { return s.version }
func (s catchAllSigner) Matches(string) bool { return true }

func TestIdentifyLowestVersionWins(t *testing.T) {
	orig := versions
	t.Cleanup(func() { versions = orig })

	versions = map[int]SignerFactory{
		5: func(d func() hash.Hash) Signer { return catchAllSigner{NewV1Signer(d), 5} },
		3: func(d func() hash.Hash) Signer { return catchAllSigner{NewV1Signer(d), 3} },
		4: func(d func() hash.Hash) Signer { return catchAllSigner{NewV1Signer(d), 4} },
	}

	id, err := NewIdentifier(nil, 1, 9)
	require.NoError(t, err)

	s := id.Identify("anything")
	require.NotNil(t, s)
	assert.Equal(t, 3, s.Version())
}

func TestNewSignerIdentifier(t *testing.T) {
	v2 := NewV2Signer(nil, WithReplayWindow(0))
	id := NewSignerIdentifier(v2)

	assert.Same(t, v2, id.Identify(`acquia-http-hmac version="2.0"`))
	assert.Nil(t, id.Identify("Acquia id:c2ln"))
}
