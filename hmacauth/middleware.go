package hmacauth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// SecretResolver looks up the shared secret for a key ID.
type SecretResolver interface {
	Secret(ctx context.Context, id string) (string, error)
}

// SecretFunc adapts a function to SecretResolver.
type SecretFunc func(ctx context.Context, id string) (string, error)

// Secret calls f.
func (f SecretFunc) Secret(ctx context.Context, id string) (string, error) {
	return f(ctx, id)
}

// NonceGuard records nonces and rejects ones already seen for a key.
type NonceGuard interface {
	Remember(ctx context.Context, keyID, nonce string, at time.Time) error
}

// MiddlewareConfig configures the server-side verification middleware.
type MiddlewareConfig struct {
	// Identifier selects the signer for each Authorization header. When
	// nil, versions 1 through 2 with DefaultDigest are accepted.
	Identifier *Identifier

	// Secrets resolves key IDs to secrets. Required.
	Secrets SecretResolver

	// Nonces, when set, rejects requests whose nonce was already used.
	Nonces NonceGuard

	// SignResponses buffers each response to a v2 request and adds
	// X-Server-Authorization-HMAC-SHA256.
	SignResponses bool

	// Logger receives verification outcomes. When nil, nothing is logged.
	Logger *zerolog.Logger

	// OnError is called when verification fails. When nil, a plain 401
	// Unauthorized response is sent.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// Middleware returns a mux.MiddlewareFunc that verifies HMAC-signed
// requests.
//
// It returns ErrNoResolver if Secrets is nil.
func Middleware(cfg MiddlewareConfig) (mux.MiddlewareFunc, error) {
	if cfg.Secrets == nil {
		return nil, ErrNoResolver
	}

	identifier := cfg.Identifier
	if identifier == nil {
		var err error

		identifier, err = NewIdentifier(DefaultDigest, 1, 2)
		if err != nil {
			return nil, err
		}
	}

	onError := cfg.OnError
	if onError == nil {
		onError = defaultOnError
	}

	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			signer, req, info, secret, err := authenticate(r, identifier, cfg)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("key_id", info.KeyID).
					Msg("hmac authentication failed")

				onError(w, r, err)

				return
			}

			logger.Debug().
				Str("key_id", info.KeyID).
				Int("version", info.Version).
				Msg("hmac authentication succeeded")

			r = r.WithContext(withAuthInfo(r.Context(), info))

			v2, ok := signer.(*V2Signer)
			if !cfg.SignResponses || !ok {
				next.ServeHTTP(w, r)
				return
			}

			buf := newResponseBuffer()
			next.ServeHTTP(buf, r)

			if err := buf.flush(w, func(body []byte) error {
				return v2.ResponseSigner().SignResponseDirect(req, w, body, secret)
			}); err != nil {
				logger.Error().Err(err).Str("key_id", info.KeyID).Msg("hmac response signing failed")
			}
		})
	}, nil
}

// authenticate runs identification, secret lookup, signature check and
// the optional nonce guard.
func authenticate(r *http.Request, identifier *Identifier, cfg MiddlewareConfig) (Signer, *Request, AuthInfo, string, error) {
	var info AuthInfo

	header := r.Header.Get(HeaderAuthorization)
	if header == "" {
		return nil, nil, info, "", fmt.Errorf("%w: %s", ErrMissingHeader, HeaderAuthorization)
	}

	signer := identifier.Identify(header)
	if signer == nil {
		return nil, nil, info, "", ErrUnknownVersion
	}

	params := signer.ParseAuthHeader(header)
	info = AuthInfo{KeyID: params.ID, Version: signer.Version(), Params: params}

	secret, err := cfg.Secrets.Secret(r.Context(), params.ID)
	if err != nil {
		return nil, nil, info, "", err
	}

	req, err := FromHTTPRequest(r)
	if err != nil {
		return nil, nil, info, "", err
	}

	ok, err := signer.Check(req, secret)
	if err != nil {
		return nil, nil, info, "", err
	}

	if !ok {
		return nil, nil, info, "", ErrSignatureMismatch
	}

	if cfg.Nonces != nil && params.Nonce != "" {
		at := time.Now()
		if ts, err := strconv.ParseInt(req.Header.Get(HeaderTimestamp), 10, 64); err == nil {
			at = time.Unix(ts, 0)
		}

		if err := cfg.Nonces.Remember(r.Context(), params.ID, params.Nonce, at); err != nil {
			return nil, nil, info, "", err
		}
	}

	return signer, req, info, secret, nil
}

// defaultOnError writes a 401 Unauthorized response with no body, or 413
// when the body exceeded an http.MaxBytesReader limit.
func defaultOnError(w http.ResponseWriter, _ *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}

	w.WriteHeader(http.StatusUnauthorized)
}

// responseBuffer captures a handler's response so it can be signed
// before anything reaches the client.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header)}
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}

	return b.body.Write(p)
}

func (b *responseBuffer) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

// flush copies the buffered response to w. sign runs after the headers
// are copied and before the status line is written.
func (b *responseBuffer) flush(w http.ResponseWriter, sign func(body []byte) error) error {
	for k, v := range b.header {
		w.Header()[k] = v
	}

	signErr := sign(b.body.Bytes())

	status := b.status
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)

	if _, err := w.Write(b.body.Bytes()); err != nil {
		return err
	}

	return signErr
}
