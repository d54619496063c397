package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/uptrace/bun"
)

type resetTokens struct {
	db    bun.IDB
	ttl   time.Duration
	clock clockwork.Clock
}

// NewResetTokensRepository returns the bun-backed ResetTokens store. Tokens
// live for ttl from creation (DefaultResetTokenTTL when zero).
func NewResetTokensRepository(db bun.IDB, ttl time.Duration, clock clockwork.Clock) ResetTokens {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &resetTokens{db: db, ttl: ttl, clock: clock}
}

func (r *resetTokens) Create(ctx context.Context, userID uuid.UUID, email string) (*ResetToken, error) {
	now := r.clock.Now()

	var lastErr error
	for i := 0; i < tokenInsertRetries; i++ {
		token, err := NewOpaqueToken(ResetTokenBytes)
		if err != nil {
			return nil, err
		}

		record := &ResetToken{
			ID:        uuid.New(),
			Token:     token,
			UserID:    userID,
			Email:     email,
			Used:      false,
			ExpiresAt: now.Add(r.ttl),
			CreatedAt: &now,
		}

		if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist reset token")
		}

		return record, nil
	}

	return nil, errors.Wrap(lastErr, errors.CategoryInternal, "exhausted reset token generation retries")
}

func (r *resetTokens) FindActive(ctx context.Context, token string) (*ResetToken, error) {
	record := new(ResetToken)

	err := r.db.NewSelect().
		Model(record).
		Where("token = ?", token).
		Where("used = ?", false).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenInvalid
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up reset token")
	}

	return record, nil
}

func (r *resetTokens) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	now := r.clock.Now()

	// conditional flip: exactly one concurrent claim observes used=false
	res, err := r.db.NewUpdate().
		Model((*ResetToken)(nil)).
		Set("used = ?", true).
		Set("used_at = ?", now).
		Where("id = ?", id).
		Where("used = ?", false).
		Exec(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to claim reset token")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to read claim result")
	}

	return rows > 0, nil
}

func (r *resetTokens) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*ResetToken)(nil)).
		Where("expires_at <= ?", r.clock.Now()).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to purge expired reset tokens")
	}

	rows, _ := res.RowsAffected()
	return rows, nil
}

var _ ResetTokens = (*resetTokens)(nil)
