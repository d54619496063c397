package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var resetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// Users is the full repository surface for user records. It extends the
// generic repository with the CredentialStore port consumed by Auther.
type Users interface {
	repository.Repository[*User]
	CredentialStore
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users           = (*users)(nil)
	_ CredentialStore = (*users)(nil)
)

// NewUsersRepository builds the bun-backed Users repository.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := a.Repository.GetByIdentifier(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user by email")
	}
	return user, nil
}

func (a *users) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := a.Repository.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user by id")
	}
	return user, nil
}

func (a *users) Create(ctx context.Context, user *User) (*User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	created, err := a.Repository.Create(ctx, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create user")
	}
	return created, nil
}

func (a *users) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	updated, err := a.Repository.Raw(ctx, resetUserPasswordSQL, hash, id.String())
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update user password")
	}
	// RETURNING * scans the updated rows; zero rows means the user is gone
	if len(updated) == 0 {
		return ErrUserNotFound
	}
	return nil
}
