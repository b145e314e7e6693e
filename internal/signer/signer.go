// Package signer implements the HMAC-SHA256 signing contract: the canonical
// signed bytes are the same bytes Ingest persists on the message row, and
// the same function recomputes the signature for verification.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns "sha256=<lower-hex HMAC-SHA256(secret, payload)>".
func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the signature and compares in constant time.
func Verify(secret string, payload []byte, signature string) bool {
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
