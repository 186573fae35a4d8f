// Package token issues the opaque access tokens that gate public contract
// viewing and signing. Tokens are write-once; there is no revoke or rotate
// here, revocation lives on the contract row.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const rawLen = 32 // 256 bits, well past guessable

// New returns a URL-safe random token. The database unique index is the
// backstop against collision, not the primary defense.
func New() (string, error) {
	b := make([]byte, rawLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
