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

// tokenInsertRetries bounds regeneration on the theoretical collision of two
// identical random tokens.
const tokenInsertRetries = 3

type sessions struct {
	db    bun.IDB
	ttl   time.Duration
	clock clockwork.Clock
}

// NewSessionsRepository returns the bun-backed Sessions store. Sessions live
// for ttl from issuance (DefaultRefreshSessionTTL when zero).
func NewSessionsRepository(db bun.IDB, ttl time.Duration, clock clockwork.Clock) Sessions {
	if ttl <= 0 {
		ttl = DefaultRefreshSessionTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &sessions{db: db, ttl: ttl, clock: clock}
}

func (s *sessions) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	now := s.clock.Now()

	var lastErr error
	for i := 0; i < tokenInsertRetries; i++ {
		token, err := NewOpaqueToken(RefreshTokenBytes)
		if err != nil {
			return "", err
		}

		record := &RefreshSession{
			ID:        uuid.New(),
			Token:     token,
			UserID:    userID,
			ExpiresAt: now.Add(s.ttl),
			CreatedAt: &now,
		}

		if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return "", errors.Wrap(err, errors.CategoryInternal, "failed to persist refresh session")
		}

		return token, nil
	}

	return "", errors.Wrap(lastErr, errors.CategoryInternal, "exhausted refresh token generation retries")
}

func (s *sessions) Redeem(ctx context.Context, token string) (uuid.UUID, error) {
	record := new(RefreshSession)

	err := s.db.NewSelect().Model(record).Where("token = ?", token).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrSessionNotFound
		}
		return uuid.Nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up refresh session")
	}

	if !record.ExpiresAt.After(s.clock.Now()) {
		// lazy delete: expired sessions are reclaimed on use
		if _, err := s.db.NewDelete().Model((*RefreshSession)(nil)).Where("token = ?", token).Exec(ctx); err != nil {
			return uuid.Nil, errors.Wrap(err, errors.CategoryInternal, "failed to delete expired refresh session")
		}
		return uuid.Nil, ErrSessionExpired
	}

	return record.UserID, nil
}

func (s *sessions) Revoke(ctx context.Context, token string) (bool, error) {
	res, err := s.db.NewDelete().Model((*RefreshSession)(nil)).Where("token = ?", token).Exec(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to revoke refresh session")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to read revoke result")
	}

	return rows > 0, nil
}

func (s *sessions) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*RefreshSession)(nil)).
		Where("expires_at <= ?", s.clock.Now()).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to purge expired refresh sessions")
	}

	rows, _ := res.RowsAffected()
	return rows, nil
}

var _ Sessions = (*sessions)(nil)
