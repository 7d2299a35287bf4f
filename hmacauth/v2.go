package hmacauth

import (
	"bytes"
	"fmt"
	"hash"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// DefaultReplayWindow is the maximum distance between a request timestamp
// and the verifier clock. Changing it breaks interoperability with
// deployed v2 servers.
const DefaultReplayWindow = 900 * time.Second

// V2Version is the version parameter value of the v2 scheme.
const V2Version = "2.0"

// v2Scheme prefixes v2 Authorization headers.
const v2Scheme = "acquia-http-hmac"

var v2HeaderPattern = regexp.MustCompile(`(?i)^\s*acquia-http-hmac.*?version="2\.0".*?$`)

// V2Option configures a V2Signer.
type V2Option func(*V2Signer)

// WithClock overrides the clock used for the replay window check.
func WithClock(clock func() time.Time) V2Option {
	return func(s *V2Signer) {
		s.clock = clock
	}
}

// WithReplayWindow overrides DefaultReplayWindow.
func WithReplayWindow(d time.Duration) V2Option {
	return func(s *V2Signer) {
		s.window = d
	}
}

// V2Signer implements the "acquia-http-hmac" version 2.0 scheme.
type V2Signer struct {
	digest   func() hash.Hash
	clock    func() time.Time
	window   time.Duration
	response *V2ResponseSigner
}

// NewV2Signer returns a V2Signer and its paired response signer. A nil
// digest selects DefaultDigest.
func NewV2Signer(digest func() hash.Hash, opts ...V2Option) *V2Signer {
	if digest == nil {
		digest = DefaultDigest
	}

	s := &V2Signer{
		digest: digest,
		clock:  time.Now,
		window: DefaultReplayWindow,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.response = &V2ResponseSigner{digest: digest}

	return s
}

func (s *V2Signer) Version() int { return 2 }

// ResponseSigner returns the response signer paired with s.
func (s *V2Signer) ResponseSigner() *V2ResponseSigner {
	return s.response
}

// Signable builds the v2 string to sign. The first five lines are
// newline-joined; the custom headers, timestamp and optional body lines
// follow:
//
//	METHOD
//	Host
//	canonical path
//	encoded query
//	unrolled params without signature
//	name: value            (one per signed header, sorted)
//	timestamp
//	Content-Type           (only with a body)
//	body hash              (only with a body)
func (s *V2Signer) Signable(r *Request, params AuthParams) []byte {
	var b bytes.Buffer

	path, query := "/", ""
	if r.URL != nil {
		path, query = r.URL.CanonicalPath(), r.URL.EncodedQuery()
	}

	b.WriteString(strings.Join([]string{
		strings.ToUpper(r.Method),
		r.Header.Get(HeaderHost),
		path,
		query,
		Unroll(params, UnrollOptions{ExcludeSignature: true, Separator: "&"}),
	}, "\n"))

	b.WriteByte('\n')

	names := slices.Clone(params.Headers)
	slices.Sort(names)

	for _, name := range names {
		b.WriteString(strings.ToLower(name))
		b.WriteString(": ")
		b.WriteString(r.Header.Get(name))
		b.WriteByte('\n')
	}

	b.WriteString(r.Header.Get(HeaderTimestamp))

	if len(r.Body) > 0 {
		b.WriteByte('\n')
		b.WriteString(r.Header.Get(HeaderContentType))
		b.WriteByte('\n')
		b.WriteString(ContentHash(r.Body))
	}

	return b.Bytes()
}

// Sign returns the v2 signature of r. The id, nonce and realm parameters
// and the X-Authorization-Timestamp header are required. The secret is
// base64-decoded before use.
func (s *V2Signer) Sign(r *Request, params AuthParams, secret string) (string, error) {
	key, err := signingKey(params, secret)
	if err != nil {
		return "", err
	}

	if r.Header.Get(HeaderTimestamp) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingHeader, HeaderTimestamp)
	}

	return hmacBase64(s.digest, key, s.Signable(r, params)), nil
}

// signingKey validates the request-independent inputs of a v2 signature
// and returns the decoded secret.
func signingKey(params AuthParams, secret string) ([]byte, error) {
	if err := requireParams(params); err != nil {
		return nil, err
	}

	for _, name := range params.Headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeaderName, name)
		}
	}

	return decodeSecret(secret)
}

// SignDirect fills in the timestamp and content hash headers when absent,
// signs r and sets its Authorization header. Version defaults to "2.0".
// r is left untouched when params or secret are invalid.
func (s *V2Signer) SignDirect(r *Request, params AuthParams, secret string) (*Request, error) {
	if _, err := signingKey(params, secret); err != nil {
		return nil, err
	}

	h := r.hdr()

	if h.Get(HeaderTimestamp) == "" {
		h.Set(HeaderTimestamp, strconv.FormatInt(s.clock().Unix(), 10))
	}

	if len(r.Body) > 0 && h.Get(HeaderContentSHA256) == "" {
		h.Set(HeaderContentSHA256, ContentHash(r.Body))
	}

	if params.Version == "" {
		params.Version = V2Version
	}

	sig, err := s.Sign(r, params, secret)
	if err != nil {
		return nil, err
	}

	params.Signature = sig
	h.Set(HeaderAuthorization, v2Scheme+" "+Unroll(params, UnrollOptions{Separator: ",", Quote: true}))

	return r, nil
}

// Check verifies a v2 request. It returns false with no error when the
// Authorization header is absent or carries no signature, and when the
// signature does not match. A missing, zero or out-of-window timestamp
// and a body hash mismatch are errors.
func (s *V2Signer) Check(r *Request, secret string) (bool, error) {
	header := r.Header.Get(HeaderAuthorization)
	if header == "" {
		return false, nil
	}

	params := s.ParseAuthHeader(header)
	if params.Signature == "" {
		return false, nil
	}

	if err := s.checkTimestamp(r); err != nil {
		return false, err
	}

	if len(r.Body) > 0 {
		got := r.Header.Get(HeaderContentSHA256)
		if got == "" {
			return false, fmt.Errorf("%w: %s", ErrMissingHeader, HeaderContentSHA256)
		}

		if got != ContentHash(r.Body) {
			return false, ErrContentHashMismatch
		}
	}

	sig, err := s.Sign(r, params, secret)
	if err != nil {
		return false, err
	}

	return equalSignatures(sig, params.Signature), nil
}

// checkTimestamp enforces the replay window on X-Authorization-Timestamp.
// Both edges of the window are inclusive.
func (s *V2Signer) checkTimestamp(r *Request) error {
	raw := r.Header.Get(HeaderTimestamp)
	if raw == "" {
		return fmt.Errorf("%w: %s", ErrMissingHeader, HeaderTimestamp)
	}

	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}

	if ts == 0 {
		return fmt.Errorf("%w: zero", ErrInvalidTimestamp)
	}

	current := s.clock().Unix()
	window := int64(s.window / time.Second)

	switch {
	case ts > current+window:
		return fmt.Errorf("%w: %d is too far in the future", ErrTimestampOutOfRange, ts)
	case ts < current-window:
		return fmt.Errorf("%w: %d is too far in the past", ErrTimestampOutOfRange, ts)
	}

	return nil
}

// Matches reports whether header is an acquia-http-hmac header with
// version="2.0".
func (s *V2Signer) Matches(header string) bool {
	return v2HeaderPattern.MatchString(header)
}

// ParseAuthHeader extracts the key="value" parameters of header.
func (s *V2Signer) ParseAuthHeader(header string) AuthParams {
	return ParseV2AuthHeader(header)
}

// requireParams checks the parameters every v2 signature needs.
func requireParams(params AuthParams) error {
	for _, p := range []struct{ name, value string }{
		{ParamID, params.ID},
		{ParamNonce, params.Nonce},
		{ParamRealm, params.Realm},
	} {
		if p.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingParameter, p.name)
		}
	}

	return nil
}
