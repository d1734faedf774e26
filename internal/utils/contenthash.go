package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// HashContent digests a value's canonical JSON form. Used to bind a signature
// to the exact contract terms at signing time; any later mutation of the terms
// shows up as a hash mismatch.
func HashContent(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}
