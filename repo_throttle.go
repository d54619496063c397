package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type throttleStore struct {
	db bun.IDB
}

// NewThrottleStore returns the bun-backed ThrottleStore over login_attempts.
func NewThrottleStore(db bun.IDB) ThrottleStore {
	return &throttleStore{db: db}
}

func (t *throttleStore) Get(ctx context.Context, ip string) (*LoginAttempt, error) {
	record := new(LoginAttempt)

	err := t.db.NewSelect().Model(record).Where("ip_address = ?", ip).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up login attempts")
	}

	return record, nil
}

func (t *throttleStore) Save(ctx context.Context, record *LoginAttempt) error {
	now := time.Now()
	record.UpdatedAt = &now

	_, err := t.db.NewInsert().
		Model(record).
		On("CONFLICT (ip_address) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("attempts = EXCLUDED.attempts").
		Set("last_attempt = EXCLUDED.last_attempt").
		Set("blocked_until = EXCLUDED.blocked_until").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to save login attempts")
	}

	return nil
}

func (t *throttleStore) Delete(ctx context.Context, ip string) error {
	_, err := t.db.NewDelete().Model((*LoginAttempt)(nil)).Where("ip_address = ?", ip).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete login attempts")
	}
	return nil
}

func (t *throttleStore) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := t.db.NewDelete().
		Model((*LoginAttempt)(nil)).
		Where("last_attempt <= ?", olderThan).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to purge stale login attempts")
	}

	rows, _ := res.RowsAffected()
	return rows, nil
}

var _ ThrottleStore = (*throttleStore)(nil)
