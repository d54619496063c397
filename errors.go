package auth

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// Stable text codes surfaced alongside errors so transports can map them to
// user-facing messages without string matching.
const (
	TextCodeValidation        = "VALIDATION_ERROR"
	TextCodeEmailTaken        = "EMAIL_TAKEN"
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeRateLimited       = "RATE_LIMITED"
	TextCodeInvalidSession    = "INVALID_SESSION"
	TextCodeSessionExpired    = "SESSION_EXPIRED"
	TextCodeSessionNotFound   = "SESSION_NOT_FOUND"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeResetTokenInvalid = "RESET_TOKEN_INVALID"
	TextCodeResetTokenExpired = "RESET_TOKEN_EXPIRED"
	TextCodeWeakPassword      = "WEAK_PASSWORD"
	TextCodeUserNotFound      = "USER_NOT_FOUND"
	TextCodeEmptyPassword     = "EMPTY_PASSWORD"
)

// ErrEmailTaken is returned by Signup when the email already has an account.
var ErrEmailTaken = errors.New("email already in use", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken)

// ErrInvalidCredentials is deliberately undifferentiated between an unknown
// email and a wrong password to avoid account enumeration.
var ErrInvalidCredentials = errors.New("wrong email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidSession is returned by Refresh when the refresh token is unknown
// or expired; the client must re-authenticate.
var ErrInvalidSession = errors.New("invalid or expired refresh token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidSession).
	WithCode(errors.CodeUnauthorized)

// ErrSessionNotFound is the store-level miss for a refresh token lookup.
var ErrSessionNotFound = errors.New("refresh session not found", errors.CategoryNotFound).
	WithTextCode(TextCodeSessionNotFound)

// ErrSessionExpired is the store-level failure for a refresh token past its
// expiry. The record is lazily deleted when this is returned.
var ErrSessionExpired = errors.New("refresh session has expired", errors.CategoryAuth).
	WithTextCode(TextCodeSessionExpired)

// ErrTokenExpired marks an access token past its expiry instant.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed marks an access token with a bad signature or format.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrResetTokenInvalid covers unknown and already-used reset tokens alike.
var ErrResetTokenInvalid = errors.New("invalid or already used reset token", errors.CategoryValidation).
	WithTextCode(TextCodeResetTokenInvalid)

// ErrResetTokenExpired is returned when the reset token exists, is unused,
// but its expiry has passed.
var ErrResetTokenExpired = errors.New("reset token has expired", errors.CategoryValidation).
	WithTextCode(TextCodeResetTokenExpired)

// ErrWeakPassword rejects replacement passwords shorter than MinPasswordLength.
var ErrWeakPassword = errors.New("password must be at least 6 characters", errors.CategoryValidation).
	WithTextCode(TextCodeWeakPassword)

// ErrUserNotFound is a post-auth consistency failure: the token or session
// was valid but the user record no longer exists.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// MetadataRetryAfterSeconds keys the retry hint carried by rate limit errors.
const MetadataRetryAfterSeconds = "retry_after_seconds"

// NewRateLimitedError builds the throttle rejection carrying a retry-after
// hint in its metadata.
func NewRateLimitedError(retryAfter time.Duration) *errors.Error {
	seconds := int64(retryAfter / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return errors.New("too many login attempts, please retry later", errors.CategoryRateLimit).
		WithTextCode(TextCodeRateLimited).
		WithMetadata(map[string]any{MetadataRetryAfterSeconds: seconds})
}

// IsRateLimited reports whether err is a throttle rejection.
func IsRateLimited(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryRateLimit
}

// RetryAfter extracts the retry hint from a rate limit error.
func RetryAfter(err error) (time.Duration, bool) {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return 0, false
	}
	seconds, ok := richErr.Metadata[MetadataRetryAfterSeconds].(int64)
	if !ok {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// isUniqueViolation sniffs driver-specific unique constraint failures; bun
// surfaces them as plain errors so string matching is the portable option.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
