package hmacauth

import "context"

type authInfoKey struct{}

// AuthInfo describes the credentials that authenticated a request.
type AuthInfo struct {
	// KeyID is the id parameter of the Authorization header.
	KeyID string

	// Version is the protocol version of the matching signer.
	Version int

	// Params are the parsed Authorization parameters.
	Params AuthParams
}

// AuthFromContext returns the AuthInfo stored by Middleware.
func AuthFromContext(ctx context.Context) (AuthInfo, bool) {
	info, ok := ctx.Value(authInfoKey{}).(AuthInfo)
	return info, ok
}

// KeyIDFromContext returns the authenticated key ID, or "" when the
// request was not authenticated by Middleware.
func KeyIDFromContext(ctx context.Context) string {
	info, _ := AuthFromContext(ctx)
	return info.KeyID
}

func withAuthInfo(ctx context.Context, info AuthInfo) context.Context {
	return context.WithValue(ctx, authInfoKey{}, info)
}
