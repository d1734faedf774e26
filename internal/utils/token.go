package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const signingTokenBytes = 32

// GenerateSigningToken returns a new plaintext signing token and its hash.
// Only the hash is ever persisted; the plaintext appears once in the signing
// URL delivered to the client.
func GenerateSigningToken() (token string, hash string, err error) {
	buf := make([]byte, signingTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate signing token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	return token, HashSigningToken(token), nil
}

// HashSigningToken derives the stored lookup hash for a signing token.
func HashSigningToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifySigningToken rechecks a presented token against a stored hash in
// constant time. Lookup by hash already narrows the candidate set; this guards
// against hash-column collisions and keeps the comparison timing-independent.
func VerifySigningToken(token, storedHash string) bool {
	computed := HashSigningToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
