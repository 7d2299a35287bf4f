package hmacauth

import (
	"fmt"
	"net/url"
	"strings"
)

// URL is an absolute URL split into the parts that feed a signature.
type URL struct {
	Scheme   string
	Host     string
	Path     string
	Query    url.Values
	Fragment string
}

// ParseURL parses raw into a URL. Only absolute URLs are accepted: both the
// scheme and the host must be non-empty.
func ParseURL(raw string) (*URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrRelativeURL, raw)
	}

	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("hmacauth: invalid query: %w", err)
	}

	return &URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     u.EscapedPath(),
		Query:    query,
		Fragment: u.EscapedFragment(),
	}, nil
}

// RequestURI returns the path with exactly one leading slash, followed by
// the encoded query and the fragment when present.
func (u *URL) RequestURI() string {
	var b strings.Builder

	b.WriteByte('/')
	b.WriteString(strings.TrimLeft(u.Path, "/"))

	if q := u.EncodedQuery(); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}

	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}

	return b.String()
}

// CanonicalPath returns the path with surrounding slashes stripped and a
// single leading slash added. An empty path yields "/".
func (u *URL) CanonicalPath() string {
	return "/" + strings.Trim(u.Path, "/")
}

// EncodedQuery returns the query as key=value pairs sorted by key, or an
// empty string when there are no parameters.
func (u *URL) EncodedQuery() string {
	if len(u.Query) == 0 {
		return ""
	}

	return u.Query.Encode()
}

// String reassembles the absolute URL.
func (u *URL) String() string {
	return u.Scheme + "://" + u.Host + u.RequestURI()
}
