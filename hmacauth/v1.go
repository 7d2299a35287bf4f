package hmacauth

import (
	"fmt"
	"hash"
	"regexp"
	"slices"
	"strings"
)

var v1HeaderPattern = regexp.MustCompile(`(?i)^\s*Acquia\s+([^:\s]+):([0-9a-zA-Z+/=]+)\s*$`)

// V1Option configures a V1Signer.
type V1Option func(*V1Signer)

// WithSignedHeaders sets the custom headers covered by v1 signatures. The
// v1 Authorization header does not carry the list, so signer and verifier
// must be configured with the same names.
func WithSignedHeaders(names ...string) V1Option {
	return func(s *V1Signer) {
		s.headers = slices.Clone(names)
	}
}

// V1Signer implements the legacy "Acquia id:signature" scheme.
type V1Signer struct {
	digest  func() hash.Hash
	headers []string
}

// NewV1Signer returns a V1Signer. A nil digest selects DefaultDigest.
func NewV1Signer(digest func() hash.Hash, opts ...V1Option) *V1Signer {
	if digest == nil {
		digest = DefaultDigest
	}

	s := &V1Signer{digest: digest}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *V1Signer) Version() int { return 1 }

// Signable builds the newline-joined v1 string:
//
//	METHOD
//	hex md5 of body
//	Content-Type
//	Date
//	custom headers, "name: value" sorted by name (empty line if none)
//	request URI
func (s *V1Signer) Signable(r *Request, params AuthParams) []byte {
	names := slices.Clone(params.Headers)
	slices.Sort(names)

	custom := make([]string, 0, len(names))
	for _, name := range names {
		custom = append(custom, strings.ToLower(name)+": "+r.Header.Get(name))
	}

	requestURI := "/"
	if r.URL != nil {
		requestURI = r.URL.RequestURI()
	}

	return []byte(strings.Join([]string{
		strings.ToUpper(r.Method),
		legacyBodyHash(r.Body),
		r.Header.Get(HeaderContentType),
		r.Header.Get(HeaderDate),
		strings.Join(custom, "\n"),
		requestURI,
	}, "\n"))
}

// Sign returns the v1 signature of r.
//
// Unlike v2, the secret is used as raw bytes and is not base64-decoded.
func (s *V1Signer) Sign(r *Request, params AuthParams, secret string) (string, error) {
	return hmacBase64(s.digest, []byte(secret), s.Signable(r, params)), nil
}

// SignDirect signs r with the configured signed headers and sets
// "Authorization: Acquia id:signature". A non-empty params.Headers must
// name the same headers, in any case or order.
func (s *V1Signer) SignDirect(r *Request, params AuthParams, secret string) (*Request, error) {
	if params.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingParameter, ParamID)
	}

	if len(params.Headers) > 0 && !sameHeaderSet(params.Headers, s.headers) {
		return nil, fmt.Errorf("%w: %v", ErrHeaderListMismatch, params.Headers)
	}

	// Check signs with the configured list, so the spelling and order
	// given by the caller must not leak into the signable.
	params.Headers = s.headers

	sig, err := s.Sign(r, params, secret)
	if err != nil {
		return nil, err
	}

	r.hdr().Set(HeaderAuthorization, fmt.Sprintf("Acquia %s:%s", params.ID, sig))

	return r, nil
}

// Check verifies a v1 Authorization header. A missing or malformed header
// and a signature mismatch all report false with no error.
func (s *V1Signer) Check(r *Request, secret string) (bool, error) {
	header := r.Header.Get(HeaderAuthorization)
	if header == "" {
		return false, nil
	}

	params := s.ParseAuthHeader(header)
	if params.ID == "" || params.Signature == "" {
		return false, nil
	}

	params.Headers = s.headers

	sig, err := s.Sign(r, params, secret)
	if err != nil {
		return false, err
	}

	return equalSignatures(sig, params.Signature), nil
}

// Matches reports whether header has the "Acquia id:signature" form.
func (s *V1Signer) Matches(header string) bool {
	return v1HeaderPattern.MatchString(header)
}

// ParseAuthHeader extracts the id and signature, or returns zero
// AuthParams when header does not match.
func (s *V1Signer) ParseAuthHeader(header string) AuthParams {
	m := v1HeaderPattern.FindStringSubmatch(header)
	if m == nil {
		return AuthParams{}
	}

	return AuthParams{ID: m[1], Signature: m[2]}
}

// sameHeaderSet compares two header name lists ignoring order and case.
func sameHeaderSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	norm := func(names []string) []string {
		out := make([]string, len(names))
		for i, n := range names {
			out[i] = CanonicalizeHeader(n)
		}

		slices.Sort(out)

		return out
	}

	return slices.Equal(norm(a), norm(b))
}
