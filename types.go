package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialStore is the port the auth core needs from the user database.
// Lookups return (nil, nil) when no record matches; errors are reserved for
// store failures.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// Sessions manages refresh session records keyed by their opaque token value.
type Sessions interface {
	// Issue persists a new session for userID and returns the raw token.
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	// Redeem resolves the owning user. It fails with ErrSessionNotFound for
	// unknown tokens and with ErrSessionExpired (deleting the row) for stale
	// ones. Redeem does not rotate the token; repeated redeems are valid.
	Redeem(ctx context.Context, token string) (uuid.UUID, error)
	// Revoke deletes the session if present and reports whether it existed.
	Revoke(ctx context.Context, token string) (bool, error)
	// PurgeExpired removes sessions past their expiry.
	PurgeExpired(ctx context.Context) (int64, error)
}

// ResetTokens manages password reset records.
type ResetTokens interface {
	Create(ctx context.Context, userID uuid.UUID, email string) (*ResetToken, error)
	// FindActive resolves an unused token or fails with ErrResetTokenInvalid.
	FindActive(ctx context.Context, token string) (*ResetToken, error)
	// Claim flips the used flag. The flip is conditional on used=false so
	// exactly one of any concurrent claims succeeds.
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

// ThrottleStore persists per-IP login attempt counters.
type ThrottleStore interface {
	// Get returns (nil, nil) when the IP has no record.
	Get(ctx context.Context, ip string) (*LoginAttempt, error)
	// Save upserts the record keyed by IP.
	Save(ctx context.Context, record *LoginAttempt) error
	Delete(ctx context.Context, ip string) error
	// PurgeStale removes records untouched since olderThan.
	PurgeStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// Throttle is the policy port consumed by Auther.
type Throttle interface {
	// Check returns nil to allow the attempt or a rate limit error carrying a
	// retry-after hint. Store failures fail open.
	Check(ctx context.Context, ip, email string) error
	// Reset clears the counter after a successful login. Best effort.
	Reset(ctx context.Context, ip string)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
