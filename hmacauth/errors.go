package hmacauth

import "errors"

// Input errors.
var (
	// ErrRelativeURL is returned when a URL lacks a scheme or host.
	ErrRelativeURL = errors.New("hmacauth: url must be absolute")

	// ErrUnsupportedBody is returned when a request body value is neither
	// text nor bytes.
	ErrUnsupportedBody = errors.New("hmacauth: unsupported body type")

	// ErrInvalidSecret is returned when a v2 secret is not valid base64.
	ErrInvalidSecret = errors.New("hmacauth: secret is not valid base64")

	// ErrInvalidHeaderName is returned when a signed custom header name is
	// not a valid HTTP field name.
	ErrInvalidHeaderName = errors.New("hmacauth: invalid signed header name")

	// ErrHeaderListMismatch is returned by V1Signer.SignDirect when the
	// requested signed headers differ from the signer's configuration.
	ErrHeaderListMismatch = errors.New("hmacauth: v1 signed headers differ from signer configuration")
)

// Missing parameter errors.
var (
	// ErrMissingParameter is returned when a required auth parameter
	// (id, nonce, realm) is absent or empty.
	ErrMissingParameter = errors.New("hmacauth: missing required auth parameter")

	// ErrMissingHeader is returned when a required request or response
	// header is absent.
	ErrMissingHeader = errors.New("hmacauth: missing required header")
)

// Verification errors. These mean the request carried authentication that
// was attempted but is semantically invalid.
var (
	// ErrInvalidTimestamp is returned when X-Authorization-Timestamp is not
	// a non-zero integer.
	ErrInvalidTimestamp = errors.New("hmacauth: invalid timestamp")

	// ErrTimestampOutOfRange is returned when the request timestamp is
	// outside the replay window.
	ErrTimestampOutOfRange = errors.New("hmacauth: timestamp outside allowed window")

	// ErrContentHashMismatch is returned when X-Authorization-Content-Sha256
	// does not match the request body.
	ErrContentHashMismatch = errors.New("hmacauth: content hash mismatch")

	// ErrSignatureMismatch is returned by the middleware and transport when
	// a check completes but the signature does not match.
	ErrSignatureMismatch = errors.New("hmacauth: signature mismatch")

	// ErrResponseSignatureInvalid is returned by Transport when a signed
	// response fails verification.
	ErrResponseSignatureInvalid = errors.New("hmacauth: response signature invalid")
)

// Identification errors.
var (
	// ErrUnknownVersion is returned when no signer recognizes an
	// Authorization header.
	ErrUnknownVersion = errors.New("hmacauth: unrecognized authorization scheme")

	// ErrInvalidVersionRange is returned by NewIdentifier when the minimum
	// version exceeds the maximum.
	ErrInvalidVersionRange = errors.New("hmacauth: invalid version range")

	// ErrNoSigner is returned when a config has no Signer.
	ErrNoSigner = errors.New("hmacauth: signer must not be nil")

	// ErrNoResolver is returned when MiddlewareConfig has no Secrets.
	ErrNoResolver = errors.New("hmacauth: secret resolver must not be nil")
)
