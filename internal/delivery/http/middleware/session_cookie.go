package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// SignSessionID encodes a session ID into its cookie form:
// "<id>.<base64url HMAC-SHA256(secret, id)>". The tokens themselves never
// leave the server; the signature only stops a client from choosing the ID
// its session is resolved under.
func SignSessionID(secret, id string) string {
	return id + "." + sessionSignature(secret, id)
}

// parseSessionCookie extracts and verifies the session ID from a cookie
// value. Unsigned, tampered, or malformed values are rejected.
func parseSessionCookie(secret, value string) (string, bool) {
	id, signature, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}

	if !hmac.Equal([]byte(signature), []byte(sessionSignature(secret, id))) {
		return "", false
	}

	return id, true
}

func sessionSignature(secret, id string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))

	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
