// Package hmacauth implements the Acquia HTTP HMAC request signing
// protocol in both of its wire versions, plus v2 response signing.
//
// # Versions
//
// Version 1 sends "Authorization: Acquia <id>:<signature>" and signs the
// method, an MD5 of the body, Content-Type, Date, optional custom headers
// and the request URI. The secret is used as raw bytes. The custom header
// list is not transmitted, so both sides configure it with
// WithSignedHeaders.
//
// Version 2 sends "Authorization: acquia-http-hmac id=...,nonce=...,
// realm=...,version="2.0",headers=...,signature=..." and signs the method,
// host, canonical path, sorted query, the auth parameters, custom headers,
// X-Authorization-Timestamp and, for requests with a body, Content-Type and
// X-Authorization-Content-Sha256. The secret is base64-decoded. Requests are
// rejected when their timestamp is more than 900 seconds away from the
// verifier clock.
//
// # Signing Requests
//
//	req, err := hmacauth.NewRequest().
//	    WithMethod(http.MethodPost).
//	    WithTime().
//	    WithRawURL("https://api.example.com/resource/11?b=2&a=1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	req.WithHeader("Content-Type", "text/plain").WithBodyString("hello")
//
//	signer := hmacauth.NewV2Signer(nil)
//	_, err = signer.SignDirect(req, hmacauth.AuthParams{
//	    ID:    "efdde334-fe7b-11e4-a322-1697f925ec7b",
//	    Nonce: hmacauth.GenerateNonce(),
//	    Realm: "Acquia",
//	}, secret)
//
//	resp, err := req.Do(ctx, nil)
//
// # Verifying Requests
//
// Check returns false without an error when the request carries no usable
// Authorization header or the signature does not match. It returns an error
// when authentication was attempted but is invalid: a missing or stale
// timestamp, or a body that does not match its content hash. Callers can
// tell an unauthenticated request from tampering or clock skew.
//
//	ok, err := signer.Check(req, secret)
//
// An Identifier picks the signer from the header alone:
//
//	id, _ := hmacauth.NewIdentifier(sha256.New, 1, 2)
//	if s := id.Identify(r.Header.Get("Authorization")); s != nil {
//	    ok, err := s.Check(req, secret)
//	}
//
// # Client Transport
//
// NewTransport creates an http.RoundTripper that signs every outgoing
// request and optionally verifies v2 response signatures:
//
//	client := &http.Client{
//	    Transport: hmacauth.NewTransport(nil, hmacauth.TransportConfig{
//	        Signer:         hmacauth.NewV2Signer(nil),
//	        ID:             id,
//	        Secret:         secret,
//	        Realm:          "Acquia",
//	        VerifyResponse: true,
//	    }),
//	}
//
// # Server Middleware
//
// Middleware returns a mux.MiddlewareFunc that verifies incoming requests
// and can sign v2 responses:
//
//	mw, err := hmacauth.Middleware(hmacauth.MiddlewareConfig{
//	    Secrets:       store,
//	    Nonces:        replay.NewMemory(2 * hmacauth.DefaultReplayWindow),
//	    SignResponses: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	router.Use(mw)
package hmacauth
