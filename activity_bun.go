package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunActivitySink is the reference ActivitySink: it appends events to the
// activity_logs table. Wrap it in a BufferedActivitySink to keep writes off
// the request path.
type BunActivitySink struct {
	db bun.IDB
}

// NewBunActivitySink returns a sink writing to db.
func NewBunActivitySink(db bun.IDB) *BunActivitySink {
	return &BunActivitySink{db: db}
}

// Record implements ActivitySink.
func (s *BunActivitySink) Record(ctx context.Context, event ActivityEvent) error {
	record := &ActivityLog{
		ID:        uuid.New(),
		UserID:    event.UserID,
		Email:     event.Email,
		Action:    string(event.Action),
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
		Details:   event.Details,
	}

	if !event.OccurredAt.IsZero() {
		occurredAt := event.OccurredAt
		record.CreatedAt = &occurredAt
	}

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist activity log")
	}

	return nil
}

var _ ActivitySink = (*BunActivitySink)(nil)
