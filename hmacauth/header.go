package hmacauth

import (
	"net/http"
	"strings"
)

// Header names used by the protocol.
const (
	HeaderAuthorization     = "Authorization"
	HeaderTimestamp         = "X-Authorization-Timestamp"
	HeaderContentSHA256     = "X-Authorization-Content-Sha256"
	HeaderResponseSignature = "X-Server-Authorization-Hmac-Sha256"
	HeaderContentType       = "Content-Type"
	HeaderDate              = "Date"
	HeaderHost              = "Host"
)

// CanonicalizeHeader converts a header name to Kebab-Camel-Case: each
// dash-separated segment is capitalized and the rest lower-cased.
func CanonicalizeHeader(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}

		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}

	return strings.Join(parts, "-")
}

// Header maps canonical header names to single values. All access goes
// through CanonicalizeHeader, so lookups are effectively case-insensitive.
type Header map[string]string

// Get returns the value of key, or an empty string when it is absent.
func (h Header) Get(key string) string {
	return h[CanonicalizeHeader(key)]
}

// Set stores value under the canonical form of key.
func (h Header) Set(key, value string) {
	h[CanonicalizeHeader(key)] = value
}

// Del removes key.
func (h Header) Del(key string) {
	delete(h, CanonicalizeHeader(key))
}

// Has reports whether key is present, even with an empty value.
func (h Header) Has(key string) bool {
	_, ok := h[CanonicalizeHeader(key)]
	return ok
}

// Clone returns a copy of h.
func (h Header) Clone() Header {
	out := make(Header, len(h))
	for k, v := range h {
		out[k] = v
	}

	return out
}

// httpHeader converts h into an http.Header. Host is skipped because
// net/http carries it on the request itself.
func (h Header) httpHeader() http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		if k == HeaderHost {
			continue
		}

		out[k] = []string{v}
	}

	return out
}

// headerFromHTTP collapses an http.Header, keeping the first value of each
// field.
func headerFromHTTP(src http.Header) Header {
	out := make(Header, len(src))
	for k, v := range src {
		if len(v) == 0 {
			continue
		}

		out.Set(k, v[0])
	}

	return out
}
