package hmacauth

import (
	"fmt"
	"hash"
	"net/http"
)

// V2ResponseSigner signs server responses to v2 requests. The signature
// binds the response body to the request nonce and timestamp. It is
// created together with its V2Signer.
type V2ResponseSigner struct {
	digest func() hash.Hash
}

// Signable returns "nonce\ntimestamp\nbody".
func (s *V2ResponseSigner) Signable(nonce, timestamp string, body []byte) []byte {
	out := make([]byte, 0, len(nonce)+len(timestamp)+len(body)+2)
	out = append(out, nonce...)
	out = append(out, '\n')
	out = append(out, timestamp...)
	out = append(out, '\n')

	return append(out, body...)
}

// Sign returns the response signature for body. The request must carry a
// timestamp and params must carry a nonce.
func (s *V2ResponseSigner) Sign(r *Request, params AuthParams, body []byte, secret string) (string, error) {
	if params.Nonce == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, ParamNonce)
	}

	timestamp := r.Header.Get(HeaderTimestamp)
	if timestamp == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingHeader, HeaderTimestamp)
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	return hmacBase64(s.digest, key, s.Signable(params.Nonce, timestamp, body)), nil
}

// SignResponseDirect signs body against the request's Authorization
// parameters and sets X-Server-Authorization-HMAC-SHA256 on w. It must be
// called before the response header is written.
func (s *V2ResponseSigner) SignResponseDirect(r *Request, w http.ResponseWriter, body []byte, secret string) error {
	sig, err := s.Sign(r, ParseV2AuthHeader(r.Header.Get(HeaderAuthorization)), body, secret)
	if err != nil {
		return err
	}

	w.Header().Set(HeaderResponseSignature, sig)

	return nil
}

// Check verifies the signature of resp against the request that produced
// it. The response body is read and restored.
func (s *V2ResponseSigner) Check(r *Request, resp *http.Response, secret string) (bool, error) {
	header := r.Header.Get(HeaderAuthorization)
	if header == "" {
		return false, fmt.Errorf("%w: %s", ErrMissingHeader, HeaderAuthorization)
	}

	params := ParseV2AuthHeader(header)

	got := resp.Header.Get(HeaderResponseSignature)
	if got == "" {
		return false, fmt.Errorf("%w: %s", ErrMissingHeader, HeaderResponseSignature)
	}

	body, err := readAndRestoreResponseBody(resp)
	if err != nil {
		return false, err
	}

	sig, err := s.Sign(r, params, body, secret)
	if err != nil {
		return false, err
	}

	return equalSignatures(sig, got), nil
}
