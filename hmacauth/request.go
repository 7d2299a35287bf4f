package hmacauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// now is the clock used by WithTime and SignDirect.
var now = time.Now

// Request is the signable view of an HTTP request. It is a plain mutable
// value: do not share one across goroutines that modify it. Signers only
// read from it, apart from SignDirect.
type Request struct {
	Method string
	URL    *URL
	Header Header
	Body   []byte
}

// NewRequest returns an empty GET request.
func NewRequest() *Request {
	return &Request{
		Method: http.MethodGet,
		Header: make(Header),
	}
}

// hdr returns the header map, allocating it for zero-value requests.
func (r *Request) hdr() Header {
	if r.Header == nil {
		r.Header = make(Header)
	}

	return r.Header
}

// WithMethod sets the upper-cased HTTP method.
func (r *Request) WithMethod(method string) *Request {
	r.Method = strings.ToUpper(method)
	return r
}

// WithURL sets the URL and the Host header.
func (r *Request) WithURL(u *URL) *Request {
	r.URL = u
	r.hdr().Set(HeaderHost, u.Host)

	return r
}

// WithRawURL parses raw and sets it as the URL.
func (r *Request) WithRawURL(raw string) (*Request, error) {
	u, err := ParseURL(raw)
	if err != nil {
		return nil, err
	}

	return r.WithURL(u), nil
}

// WithHeader sets a single header.
func (r *Request) WithHeader(key, value string) *Request {
	r.hdr().Set(key, value)
	return r
}

// WithHeaders sets every header in headers.
func (r *Request) WithHeaders(headers map[string]string) *Request {
	for k, v := range headers {
		r.hdr().Set(k, v)
	}

	return r
}

// WithTime stamps the request with the current time.
func (r *Request) WithTime() *Request {
	return r.WithTimestamp(now())
}

// WithTimestamp sets X-Authorization-Timestamp (unix seconds) and the
// legacy Date header to t.
func (r *Request) WithTimestamp(t time.Time) *Request {
	r.hdr().Set(HeaderTimestamp, strconv.FormatInt(t.Unix(), 10))
	r.hdr().Set(HeaderDate, t.UTC().Format(http.TimeFormat))

	return r
}

// WithBody sets the raw body and X-Authorization-Content-Sha256.
func (r *Request) WithBody(body []byte) *Request {
	r.Body = body
	r.hdr().Set(HeaderContentSHA256, ContentHash(body))

	return r
}

// WithBodyString sets a UTF-8 text body.
func (r *Request) WithBodyString(body string) *Request {
	return r.WithBody([]byte(body))
}

// WithBodyFrom accepts text, bytes, a reader or a fmt.Stringer as the
// body. Any other type fails with ErrUnsupportedBody.
func (r *Request) WithBodyFrom(body any) (*Request, error) {
	switch v := body.(type) {
	case []byte:
		return r.WithBody(v), nil
	case string:
		return r.WithBodyString(v), nil
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, err
		}

		return r.WithBody(data), nil
	case fmt.Stringer:
		return r.WithBodyString(v.String()), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedBody, body)
	}
}

// WithJSONBody encodes v as JSON, sets it as the body and sets
// Content-Type to application/json.
func (r *Request) WithJSONBody(v any) (*Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	r.hdr().Set(HeaderContentType, "application/json")

	return r.WithBody(data), nil
}

// GetHeader returns the header value for key, or "" when absent.
func (r *Request) GetHeader(key string) string {
	return r.Header.Get(key)
}

// HTTPRequest builds a net/http request carrying the same method, URL,
// headers and body.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	if r.URL == nil {
		return nil, fmt.Errorf("%w: request has no url", ErrRelativeURL)
	}

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL.String(), body)
	if err != nil {
		return nil, err
	}

	req.Header = r.Header.httpHeader()
	if host := r.Header.Get(HeaderHost); host != "" {
		req.Host = host
	}

	return req, nil
}

// Do executes the request with client, or http.DefaultClient when client
// is nil.
func (r *Request) Do(ctx context.Context, client *http.Client) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := r.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	return client.Do(req)
}

// FromHTTPRequest converts a net/http request. Server-side requests carry
// a relative URL, so the scheme is taken from TLS state or
// X-Forwarded-Proto and the host from r.Host. The body is read and
// restored so downstream handlers can consume it again.
func FromHTTPRequest(r *http.Request) (*Request, error) {
	body, err := readAndRestoreBody(r)
	if err != nil {
		return nil, err
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}

		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
	}

	host := r.Host
	if host == "" {
		host = r.URL.Host
	}

	raw := scheme + "://" + host + r.URL.RequestURI()
	if r.URL.Fragment != "" {
		raw += "#" + r.URL.EscapedFragment()
	}

	u, err := ParseURL(raw)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method: strings.ToUpper(r.Method),
		URL:    u,
		Header: headerFromHTTP(r.Header),
		Body:   body,
	}

	// net/http strips Host from the header map.
	req.Header.Set(HeaderHost, host)

	return req, nil
}

// readAndRestoreBody reads the entire request body and replaces it with a
// new reader so the body can be consumed again.
func readAndRestoreBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}

// readAndRestoreResponseBody is readAndRestoreBody for responses.
func readAndRestoreResponseBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}
