package auth_test

import (
	"context"
	"testing"
	"time"

	auth "github.com/veluna/go-auth"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestThrottle(store auth.ThrottleStore, clock clockwork.Clock) *auth.LoginThrottle {
	return auth.NewLoginThrottle(store).
		WithClock(clock).
		WithPolicy(5, 15*time.Minute, 15*time.Minute)
}

func TestThrottleAllowsUpToLimit(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := newFakeThrottleStore()
	throttle := newTestThrottle(store, clock)

	for i := 0; i < 5; i++ {
		err := throttle.Check(ctx, "10.0.0.1", "user@example.com")
		require.NoError(t, err, "attempt %d should be allowed", i+1)
		clock.Advance(time.Second)
	}

	err := throttle.Check(ctx, "10.0.0.1", "user@example.com")
	require.Error(t, err)
	assert.True(t, auth.IsRateLimited(err))

	retryAfter, ok := auth.RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, 15*time.Minute, retryAfter)
}

func TestThrottleDoesNotIncrementWhileBlocked(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := newFakeThrottleStore()
	throttle := newTestThrottle(store, clock)

	for i := 0; i < 6; i++ {
		throttle.Check(ctx, "10.0.0.1", "user@example.com")
	}

	blocked, err := store.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	attemptsAtBlock := blocked.Attempts

	for i := 0; i < 3; i++ {
		err := throttle.Check(ctx, "10.0.0.1", "user@example.com")
		require.Error(t, err)
		assert.True(t, auth.IsRateLimited(err))
	}

	after, err := store.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, attemptsAtBlock, after.Attempts)
}

func TestThrottleRetryAfterShrinksOverTime(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := newFakeThrottleStore()
	throttle := newTestThrottle(store, clock)

	for i := 0; i < 6; i++ {
		throttle.Check(ctx, "10.0.0.1", "user@example.com")
	}

	clock.Advance(10 * time.Minute)

	err := throttle.Check(ctx, "10.0.0.1", "user@example.com")
	require.Error(t, err)
	retryAfter, ok := auth.RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, 5*time.Minute, retryAfter)
}

func TestThrottleWindowElapsedResetsCounter(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := newFakeThrottleStore()
	throttle := newTestThrottle(store, clock)

	for i := 0; i < 4; i++ {
		require.NoError(t, throttle.Check(ctx, "10.0.0.1", "user@example.com"))
	}

	clock.Advance(16 * time.Minute)

	require.NoError(t, throttle.Check(ctx, "10.0.0.1", "user@example.com"))

	record, err := store.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 1, record.Attempts)
	assert.Nil(t, record.BlockedUntil)
}

func TestThrottleAllowsAfterBlockExpires(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := newFakeThrottleStore()
	throttle := newTestThrottle(store, clock)

	for i := 0; i < 6; i++ {
		throttle.Check(ctx, "10.0.0.1", "user@example.com")
	}

	// past the block and past the window, the counter starts over
	clock.Advance(16 * time.Minute)

	err := throttle.Check(ctx, "10.0.0.1", "user@example.com")
	assert.NoError(t, err)
}

func TestThrottleResetClearsRecord(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := newFakeThrottleStore()
	throttle := newTestThrottle(store, clock)

	for i := 0; i < 3; i++ {
		require.NoError(t, throttle.Check(ctx, "10.0.0.1", "user@example.com"))
	}

	throttle.Reset(ctx, "10.0.0.1")

	record, err := store.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestThrottleKeyedByIP(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := newFakeThrottleStore()
	throttle := newTestThrottle(store, clock)

	for i := 0; i < 6; i++ {
		throttle.Check(ctx, "10.0.0.1", "user@example.com")
	}

	// same email from another IP is unaffected
	err := throttle.Check(ctx, "10.0.0.2", "user@example.com")
	assert.NoError(t, err)
}

func TestThrottleFailsOpenOnStoreErrors(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := newFakeThrottleStore()
	store.getErr = assert.AnError
	throttle := newTestThrottle(store, clock)

	for i := 0; i < 10; i++ {
		err := throttle.Check(ctx, "10.0.0.1", "user@example.com")
		assert.NoError(t, err)
	}
}

func TestThrottleFailsOpenOnSaveErrors(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := newFakeThrottleStore()
	store.saveErr = assert.AnError
	throttle := newTestThrottle(store, clock)

	err := throttle.Check(ctx, "10.0.0.1", "user@example.com")
	assert.NoError(t, err)
}
