package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const idSize = 32 // 256 bits

// GenerateID generates a cryptographically secure session ID.
func GenerateID() (string, error) {
	return RandomToken(idSize)
}

// RandomToken returns size random bytes encoded as unpadded base64url. It is
// also used for OAuth state and PKCE verifiers.
func RandomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
