// Package replay rejects reused request nonces.
//
// A Guard remembers every (key ID, nonce) pair it sees for a TTL that
// should be at least twice the signer's replay window, so that a nonce
// cannot be accepted again while its timestamp is still valid.
package replay

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL covers both sides of the default 900 second timestamp window.
const DefaultTTL = 30 * time.Minute

// ErrReplayed is returned when a nonce was already seen for a key.
var ErrReplayed = errors.New("replay: nonce already used")

// Guard records nonces. Remember returns ErrReplayed when the pair was
// seen before and has not expired yet. at is the request timestamp.
type Guard interface {
	Remember(ctx context.Context, keyID, nonce string, at time.Time) error
}
