package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the signed payload of an access token: the owning user id
// as subject plus the email snapshot taken at issuance. Validity is entirely
// a function of signature and expiry; the server keeps no state for it.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// UserID parses the subject claim into the owning user id.
func (c *AccessClaims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.RegisteredClaims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}
	return id, nil
}

// Expires returns the expiration time
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *AccessClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
