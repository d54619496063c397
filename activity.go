package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ActivityAction enumerates the security-relevant actions we audit.
type ActivityAction string

const (
	ActionSignup               ActivityAction = "SIGNUP"
	ActionLoginSuccess         ActivityAction = "LOGIN_SUCCESS"
	ActionLoginFailed          ActivityAction = "LOGIN_FAILED"
	ActionLogout               ActivityAction = "LOGOUT"
	ActionPasswordResetRequest ActivityAction = "PASSWORD_RESET_REQUEST"
	ActionPasswordResetSuccess ActivityAction = "PASSWORD_RESET_SUCCESS"
)

// ActivityEvent captures audit-friendly information about an action. Details
// must never contain raw token values or password material.
type ActivityEvent struct {
	UserID     *uuid.UUID
	Email      string
	Action     ActivityAction
	IPAddress  string
	UserAgent  string
	Details    map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// Recording is best effort: callers log failures and move on.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// BufferedActivitySink decouples event recording from the request path: a
// bounded channel feeds a background drainer, so Record never blocks. Events
// are dropped with a warning when the buffer is full.
type BufferedActivitySink struct {
	inner  ActivitySink
	logger Logger
	queue  chan ActivityEvent
	done   chan struct{}
	once   sync.Once
}

// NewBufferedActivitySink wraps inner with an asynchronous buffer of the
// given size (DefaultActivityBuffer when non-positive) and starts draining.
func NewBufferedActivitySink(inner ActivitySink, size int, logger Logger) *BufferedActivitySink {
	if size <= 0 {
		size = DefaultActivityBuffer
	}
	if logger == nil {
		logger = defLogger{}
	}

	b := &BufferedActivitySink{
		inner:  normalizeActivitySink(inner),
		logger: logger,
		queue:  make(chan ActivityEvent, size),
		done:   make(chan struct{}),
	}

	go b.drain()

	return b
}

// Record enqueues the event without blocking. It always returns nil; a full
// buffer drops the event with a warning.
func (b *BufferedActivitySink) Record(_ context.Context, event ActivityEvent) error {
	select {
	case b.queue <- event:
	default:
		b.logger.Warn("activity buffer full, dropping %s event", event.Action)
	}
	return nil
}

// Close stops accepting events and waits for the drainer to flush the queue.
func (b *BufferedActivitySink) Close() {
	b.once.Do(func() {
		close(b.queue)
	})
	<-b.done
}

func (b *BufferedActivitySink) drain() {
	defer close(b.done)
	for event := range b.queue {
		if err := b.inner.Record(context.Background(), event); err != nil {
			b.logger.Warn("activity sink record error: %v", err)
		}
	}
}

var _ ActivitySink = (*BufferedActivitySink)(nil)
