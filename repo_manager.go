package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/jonboulle/clockwork"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all persistence-backed stores plus transaction
// management for callers that need multi-store consistency.
type RepositoryManager interface {
	Users() Users
	Sessions() Sessions
	ResetTokens() ResetTokens
	Throttle() ThrottleStore
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Validate() error
	MustValidate()
}

type mngr struct {
	db       *bun.DB
	users    Users
	sessions Sessions
	resets   ResetTokens
	throttle ThrottleStore
}

// NewRepositoryManager wires every store over a single bun connection, with
// lifetimes taken from cfg and time reads from clock.
func NewRepositoryManager(db *bun.DB, cfg Config, clock clockwork.Clock) RepositoryManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &mngr{
		db:       db,
		users:    NewUsersRepository(db),
		sessions: NewSessionsRepository(db, cfg.RefreshSessionTTL, clock),
		resets:   NewResetTokensRepository(db, cfg.ResetTokenTTL, clock),
		throttle: NewThrottleStore(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.sessions == nil {
		return errors.New("repository sessions should be initialized")
	}

	if m.resets == nil {
		return errors.New("repository resetTokens should be initialized")
	}

	if m.throttle == nil {
		return errors.New("repository throttle should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Sessions() Sessions {
	return m.sessions
}

func (m mngr) ResetTokens() ResetTokens {
	return m.resets
}

func (m mngr) Throttle() ThrottleStore {
	return m.throttle
}
