package auth

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/goliatone/go-errors"
)

// Opaque token sizes in raw bytes, before hex encoding.
const (
	RefreshTokenBytes = 64
	ResetTokenBytes   = 32
)

// NewOpaqueToken returns n cryptographically random bytes, hex encoded.
func NewOpaqueToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to read random bytes")
	}
	return hex.EncodeToString(b), nil
}
