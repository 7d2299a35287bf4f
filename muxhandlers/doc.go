// Package muxhandlers provides the gorilla/mux middleware that wraps the
// httphmac server around the HMAC verification layer.
//
// # Request ID Middleware
//
// RequestIDMiddleware assigns each request a UUIDv7, echoes it in the
// X-Request-ID response header and attaches a zerolog logger carrying
// the ID to the request context:
//
//	r.Use(muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
//	    Logger: logger,
//	}))
//
// Handlers retrieve the ID with RequestIDFromContext and the logger with
// zerolog.Ctx.
//
// # Access Log Middleware
//
// AccessLogMiddleware logs one line per request with the method, path,
// status, response size and duration.
//
// # Recovery Middleware
//
// RecoveryMiddleware turns handler panics into 500 responses and logs the
// recovered value.
//
// # Request Size Limit Middleware
//
// RequestSizeLimitMiddleware caps request bodies before the HMAC layer
// reads them into memory. Reads past the limit fail with
// *http.MaxBytesError.
package muxhandlers
