package hmacauth

import "hash"

// Signer signs and verifies requests for one protocol version.
// Implementations hold no per-request state and are safe for concurrent
// use.
type Signer interface {
	// Version returns the protocol version number.
	Version() int

	// Sign returns the base64 signature of r.
	Sign(r *Request, params AuthParams, secret string) (string, error)

	// SignDirect signs r and sets its Authorization header.
	SignDirect(r *Request, params AuthParams, secret string) (*Request, error)

	// Check verifies the Authorization header of r. It returns false with
	// a nil error when the request carries no parseable authentication or
	// the signature does not match, and a non-nil error when the
	// authentication is present but invalid.
	Check(r *Request, secret string) (bool, error)

	// Matches reports whether an Authorization header belongs to this
	// version.
	Matches(header string) bool

	// ParseAuthHeader extracts the auth parameters from an Authorization
	// header. It returns zero AuthParams when the header does not parse.
	ParseAuthHeader(header string) AuthParams
}

// SignerFactory builds a Signer around a digest.
type SignerFactory func(digest func() hash.Hash) Signer

var (
	_ Signer = (*V1Signer)(nil)
	_ Signer = (*V2Signer)(nil)
)
