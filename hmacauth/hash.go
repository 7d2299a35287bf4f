package hmacauth

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/google/uuid"
)

// DefaultDigest is the HMAC digest used when a signer is built with a nil
// digest.
var DefaultDigest = sha256.New

// ContentHash returns the base64 SHA-256 of body, the value carried in
// X-Authorization-Content-Sha256.
func ContentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// legacyBodyHash returns the hex MD5 of body as used by the v1 scheme.
func legacyBodyHash(body []byte) string {
	sum := md5.Sum(body)
	return hex.EncodeToString(sum[:])
}

// GenerateNonce returns a random UUIDv4 for the v2 nonce parameter.
func GenerateNonce() string {
	return uuid.NewString()
}

// decodeSecret strictly base64-decodes a v2 secret.
func decodeSecret(secret string) ([]byte, error) {
	key, err := base64.StdEncoding.Strict().DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}

	return key, nil
}

// hmacBase64 returns base64(HMAC(key, message)).
func hmacBase64(digest func() hash.Hash, key, message []byte) string {
	mac := hmac.New(digest, key)
	mac.Write(message)

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// equalSignatures compares two base64 signatures in constant time.
func equalSignatures(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
