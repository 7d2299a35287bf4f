package keystore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned when no secret is stored for a key ID.
	ErrKeyNotFound = errors.New("keystore: key not found")

	// ErrInvalidKey is returned when a key has an empty ID or a secret
	// that is not standard base64.
	ErrInvalidKey = errors.New("keystore: invalid key")
)

// Store looks up the shared secret for a key ID.
type Store interface {
	Secret(ctx context.Context, id string) (string, error)
}

// Key is a single credential.
type Key struct {
	ID     string `yaml:"id"`
	Secret string `yaml:"secret"`
	Realm  string `yaml:"realm,omitempty"`
}

// Validate checks that the key has an ID and a base64 secret.
func (k Key) Validate() error {
	if k.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidKey)
	}

	if _, err := base64.StdEncoding.Strict().DecodeString(k.Secret); err != nil {
		return fmt.Errorf("%w: secret for %q is not base64: %v", ErrInvalidKey, k.ID, err)
	}

	return nil
}
