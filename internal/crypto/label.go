// Package crypto derives display labels from opaque payloads.
// Nothing here signs, encrypts or verifies anything.
package crypto

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	labelHexLen       = 8
	fingerprintHexLen = 16
)

// SignatureLabel returns a short "0x…" tag for a query, stable for equal input.
func SignatureLabel(query string) string {
	sum := blake2b.Sum256([]byte(query))
	return "0x" + hex.EncodeToString(sum[:])[:labelHexLen] + "..."
}

// Fingerprint returns colon-grouped hex of the key text, e.g. "ab12:cd34:...".
func Fingerprint(publicKey string) string {
	sum := blake2b.Sum256([]byte(publicKey))
	h := hex.EncodeToString(sum[:])[:fingerprintHexLen]

	var b strings.Builder
	for i := 0; i < len(h); i += 4 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(h[i : i+4])
	}
	return b.String()
}
