// File: internal/platform/crypto/generator.go
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureRandomString returns n random bytes encoded as unpadded
// base64url, safe to put into OAuth state and query parameters.
func GenerateSecureRandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("random length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
