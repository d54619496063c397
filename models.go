package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account record owned by the credential store.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Avatar        string     `bun:"avatar" json:"avatar,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// UserSummary is the safe projection returned by auth operations. It never
// carries the password hash.
type UserSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   UserRole  `json:"role"`
	Avatar string    `json:"avatar,omitempty"`
}

// Summary projects the user into its API-safe shape.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
	}
}

// RefreshSession is a persisted refresh token record. The opaque token value
// is the lookup key handed to the client; the row id never leaves the store.
type RefreshSession struct {
	bun.BaseModel `bun:"table:refresh_sessions,alias:rs"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"-"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ResetToken is a single-use, time-boxed password reset credential. Multiple
// unexpired tokens may coexist for the same user; each can be consumed once.
type ResetToken struct {
	bun.BaseModel `bun:"table:password_resets,alias:pwdr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"-"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	Used          bool       `bun:"used,notnull,default:false" json:"used"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	UsedAt        *time.Time `bun:"used_at,nullzero" json:"used_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// LoginAttempt is the per-source-IP throttle record. The email is
// informational only; throttling is keyed by IP.
type LoginAttempt struct {
	bun.BaseModel `bun:"table:login_attempts,alias:la"`
	IPAddress     string     `bun:"ip_address,pk" json:"ip_address"`
	Email         string     `bun:"email" json:"email,omitempty"`
	Attempts      int        `bun:"attempts,notnull,default:1" json:"attempts"`
	LastAttempt   time.Time  `bun:"last_attempt,notnull" json:"last_attempt"`
	BlockedUntil  *time.Time `bun:"blocked_until,nullzero" json:"blocked_until,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Blocked reports whether the record is inside an active block window.
func (a *LoginAttempt) Blocked(now time.Time) bool {
	return a != nil && a.BlockedUntil != nil && a.BlockedUntil.After(now)
}

// ActivityLog is the persisted form of an ActivityEvent, used by the
// reference BunActivitySink. Raw token values must never be stored in Details.
type ActivityLog struct {
	bun.BaseModel `bun:"table:activity_logs,alias:al"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID     `bun:"user_id,nullzero,type:uuid" json:"user_id,omitempty"`
	Email         string         `bun:"email" json:"email,omitempty"`
	Action        string         `bun:"action,notnull" json:"action"`
	IPAddress     string         `bun:"ip_address" json:"ip_address,omitempty"`
	UserAgent     string         `bun:"user_agent" json:"user_agent,omitempty"`
	Details       map[string]any `bun:"details,type:jsonb" json:"details,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
