package auth

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Reclaimer sweeps expired refresh sessions, expired reset tokens, and stale
// throttle records on a fixed interval. Expiry is enforced at read time
// regardless; the sweep only reclaims storage.
type Reclaimer struct {
	sessions  Sessions
	resets    ResetTokens
	throttle  ThrottleStore
	retention time.Duration
	interval  time.Duration
	clock     clockwork.Clock
	logger    Logger
}

// NewReclaimer builds a sweeper over the three expiring stores. The throttle
// retention defaults to 24h and the interval to DefaultReclaimInterval.
func NewReclaimer(sessions Sessions, resets ResetTokens, throttle ThrottleStore) *Reclaimer {
	return &Reclaimer{
		sessions:  sessions,
		resets:    resets,
		throttle:  throttle,
		retention: DefaultThrottleRetention,
		interval:  DefaultReclaimInterval,
		clock:     clockwork.NewRealClock(),
		logger:    defLogger{},
	}
}

// WithInterval overrides the sweep interval.
func (r *Reclaimer) WithInterval(interval time.Duration) *Reclaimer {
	if interval > 0 {
		r.interval = interval
	}
	return r
}

// WithRetention overrides how long throttle records are kept after their
// last attempt.
func (r *Reclaimer) WithRetention(retention time.Duration) *Reclaimer {
	if retention > 0 {
		r.retention = retention
	}
	return r
}

// WithClock overrides the time source.
func (r *Reclaimer) WithClock(clock clockwork.Clock) *Reclaimer {
	if clock != nil {
		r.clock = clock
	}
	return r
}

// WithLogger overrides the logger.
func (r *Reclaimer) WithLogger(logger Logger) *Reclaimer {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Run sweeps on every tick until ctx is cancelled. Sweep failures are logged
// and retried on the next tick; Run never returns an error besides ctx's.
func (r *Reclaimer) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			r.Sweep(ctx)
		}
	}
}

// Sweep runs a single reclaim pass over all three stores.
func (r *Reclaimer) Sweep(ctx context.Context) {
	if n, err := r.sessions.PurgeExpired(ctx); err != nil {
		r.logger.Warn("reclaimer failed to purge refresh sessions: %v", err)
	} else if n > 0 {
		r.logger.Debug("reclaimer purged %d expired refresh sessions", n)
	}

	if n, err := r.resets.PurgeExpired(ctx); err != nil {
		r.logger.Warn("reclaimer failed to purge reset tokens: %v", err)
	} else if n > 0 {
		r.logger.Debug("reclaimer purged %d expired reset tokens", n)
	}

	olderThan := r.clock.Now().Add(-r.retention)
	if n, err := r.throttle.PurgeStale(ctx, olderThan); err != nil {
		r.logger.Warn("reclaimer failed to purge login attempts: %v", err)
	} else if n > 0 {
		r.logger.Debug("reclaimer purged %d stale login attempts", n)
	}
}
