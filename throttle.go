package auth

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// LoginThrottle enforces the per-source-IP brute force policy: up to
// maxAttempts attempts inside a rolling window, then a hard block. The
// throttle is keyed by source IP and fails open when its backing store is
// unreachable: the failure is logged and the attempt is allowed. That
// fail-open is the one exception to the package's error policy.
type LoginThrottle struct {
	store       ThrottleStore
	clock       clockwork.Clock
	logger      Logger
	maxAttempts int
	window      time.Duration
	blockFor    time.Duration
}

// NewLoginThrottle returns a throttle with the default 5-attempts/15m policy.
func NewLoginThrottle(store ThrottleStore) *LoginThrottle {
	return &LoginThrottle{
		store:       store,
		clock:       clockwork.NewRealClock(),
		logger:      defLogger{},
		maxAttempts: DefaultMaxLoginAttempts,
		window:      DefaultThrottleWindow,
		blockFor:    DefaultThrottleBlock,
	}
}

// WithClock overrides the time source.
func (t *LoginThrottle) WithClock(clock clockwork.Clock) *LoginThrottle {
	if clock != nil {
		t.clock = clock
	}
	return t
}

// WithLogger overrides the logger.
func (t *LoginThrottle) WithLogger(logger Logger) *LoginThrottle {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// WithPolicy overrides the attempt limit and window/block durations.
func (t *LoginThrottle) WithPolicy(maxAttempts int, window, blockFor time.Duration) *LoginThrottle {
	if maxAttempts > 0 {
		t.maxAttempts = maxAttempts
	}
	if window > 0 {
		t.window = window
	}
	if blockFor > 0 {
		t.blockFor = blockFor
	}
	return t
}

// Check records a login attempt from ip and decides whether to allow it.
// The email is stored for operator forensics only; it never affects the
// decision.
func (t *LoginThrottle) Check(ctx context.Context, ip, email string) error {
	now := t.clock.Now()

	record, err := t.store.Get(ctx, ip)
	if err != nil {
		t.logger.Warn("login throttle store unavailable, failing open: %v", err)
		return nil
	}

	if record == nil {
		record = &LoginAttempt{
			IPAddress:   ip,
			Email:       email,
			Attempts:    1,
			LastAttempt: now,
		}
		t.save(ctx, record)
		return nil
	}

	// attempts are not incremented while the block is active
	if record.Blocked(now) {
		return NewRateLimitedError(record.BlockedUntil.Sub(now))
	}

	if now.Sub(record.LastAttempt) > t.window {
		record.Attempts = 1
		record.LastAttempt = now
		record.BlockedUntil = nil
		record.Email = email
		t.save(ctx, record)
		return nil
	}

	record.Attempts++
	record.LastAttempt = now
	record.Email = email

	if record.Attempts > t.maxAttempts {
		blockedUntil := now.Add(t.blockFor)
		record.BlockedUntil = &blockedUntil
		t.save(ctx, record)
		t.logger.Warn("login throttle blocked ip %s after %d attempts", ip, record.Attempts)
		return NewRateLimitedError(t.blockFor)
	}

	t.save(ctx, record)
	return nil
}

// Reset deletes the throttle record outright after a successful login. This
// and the 24h retention sweep are the only state-clearing paths.
func (t *LoginThrottle) Reset(ctx context.Context, ip string) {
	if err := t.store.Delete(ctx, ip); err != nil {
		t.logger.Warn("failed to reset login attempts for %s: %v", ip, err)
	}
}

func (t *LoginThrottle) save(ctx context.Context, record *LoginAttempt) {
	if err := t.store.Save(ctx, record); err != nil {
		t.logger.Warn("failed to save login attempts for %s, failing open: %v", record.IPAddress, err)
	}
}

var _ Throttle = (*LoginThrottle)(nil)

type noopThrottle struct{}

func (noopThrottle) Check(context.Context, string, string) error { return nil }
func (noopThrottle) Reset(context.Context, string)               {}
