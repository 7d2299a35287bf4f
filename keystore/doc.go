// Package keystore resolves HMAC key IDs to shared secrets.
//
// Three backends are provided:
//
//   - Memory keeps keys in a map and is safe for concurrent use.
//   - LoadFile and Parse read a YAML key file into a Memory store.
//   - SQLite persists keys in a SQLite database.
//
// Every backend implements Store, which satisfies the SecretResolver
// interface expected by the hmacauth middleware:
//
//	keys, err := keystore.LoadFile("keys.yaml")
//	if err != nil {
//		return err
//	}
//
//	mw, err := hmacauth.Middleware(hmacauth.MiddlewareConfig{Secrets: keys})
package keystore
