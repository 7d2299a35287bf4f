package hmacauth

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// TransportConfig configures request signing on the client side.
type TransportConfig struct {
	// Signer produces signatures. Required.
	Signer Signer

	// ID is the key identifier sent in the id parameter.
	ID string

	// Secret is the base64 shared secret.
	Secret string

	// Realm is the provider realm. Required by v2.
	Realm string

	// Headers lists request headers to cover in the signature.
	Headers []string

	// VerifyResponse, when true and Signer is a *V2Signer, requires a valid
	// X-Server-Authorization-HMAC-SHA256 header on every response.
	VerifyResponse bool
}

// Transport is an http.RoundTripper that signs outgoing requests.
type Transport struct {
	base   http.RoundTripper
	config TransportConfig
}

// NewTransport creates a signing Transport that delegates to base after
// signing each request. When base is nil, a clone of http.DefaultTransport
// is used.
func NewTransport(base *http.Transport, cfg TransportConfig) *Transport {
	var rt http.RoundTripper
	if base != nil {
		rt = base
	} else {
		rt = http.DefaultTransport.(*http.Transport).Clone()
	}

	return &Transport{
		base:   rt,
		config: cfg,
	}
}

// RoundTrip signs a clone of req and delegates to the base transport.
// Version 2 requests get a fresh nonce on every call.
//
// A request body without GetBody is read into memory and req.Body is
// replaced with a reader over the same bytes, so the caller can still
// read or resend it.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.config.Signer == nil {
		return nil, ErrNoSigner
	}

	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		if err := bufferBody(req); err != nil {
			return nil, err
		}
	}

	clone := req.Clone(req.Context())

	if clone.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}

		clone.Body = body
	}

	signable, err := FromHTTPRequest(clone)
	if err != nil {
		return nil, err
	}

	params := AuthParams{
		ID:      t.config.ID,
		Realm:   t.config.Realm,
		Headers: t.config.Headers,
	}

	if t.config.Signer.Version() >= 2 {
		params.Nonce = GenerateNonce()
	}

	if _, err := t.config.Signer.SignDirect(signable, params, t.config.Secret); err != nil {
		return nil, err
	}

	for k, v := range signable.Header {
		if k == HeaderHost {
			continue
		}

		clone.Header.Set(k, v)
	}

	resp, err := t.base.RoundTrip(clone)
	if err != nil {
		return nil, err
	}

	v2, ok := t.config.Signer.(*V2Signer)
	if !t.config.VerifyResponse || !ok {
		return resp, nil
	}

	valid, err := v2.ResponseSigner().Check(signable, resp, t.config.Secret)
	if err != nil || !valid {
		resp.Body.Close()

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrResponseSignatureInvalid, err)
		}

		return nil, ErrResponseSignatureInvalid
	}

	return resp, nil
}

// bufferBody drains req.Body and installs a replayable copy along with
// GetBody.
func bufferBody(req *http.Request) error {
	body, err := io.ReadAll(req.Body)
	req.Body.Close()

	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	return nil
}
