package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// TokenService issues and verifies stateless access tokens.
type TokenService interface {
	IssueAccessToken(userID uuid.UUID, email string) (string, error)
	Validate(token string) (*AccessClaims, error)
}

// TokenServiceImpl implements TokenService with HMAC-SHA256 signatures and a
// process-wide signing key that is read-only after construction.
type TokenServiceImpl struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	clock      clockwork.Clock
	logger     Logger
}

// NewTokenService creates a TokenService. An empty signing key is a hard
// error: the codec refuses to fall back to any default secret.
func NewTokenService(signingKey []byte, ttl time.Duration, issuer string) (*TokenServiceImpl, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("token signing key is required", errors.CategoryInternal)
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		clock:      clockwork.NewRealClock(),
		logger:     defLogger{},
	}, nil
}

// WithClock overrides the time source used for issuance and verification.
func (ts *TokenServiceImpl) WithClock(clock clockwork.Clock) *TokenServiceImpl {
	if clock != nil {
		ts.clock = clock
	}
	return ts
}

// WithLogger overrides the logger.
func (ts *TokenServiceImpl) WithLogger(logger Logger) *TokenServiceImpl {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// IssueAccessToken signs claims for the user, valid from now until now+ttl.
func (ts *TokenServiceImpl) IssueAccessToken(userID uuid.UUID, email string) (string, error) {
	now := ts.clock.Now()
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
		Email: email,
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary access claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *AccessClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and verifies a token string, returning its claims. Expired
// tokens fail with ErrTokenExpired; anything else with ErrTokenMalformed.
func (ts *TokenServiceImpl) Validate(tokenString string) (*AccessClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.clock.Now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}

var _ TokenService = (*TokenServiceImpl)(nil)
