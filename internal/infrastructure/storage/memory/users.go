package memory

import (
	"context"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/catalogs/user"
)

var (
	_ user.Repository   = (*UserRepo)(nil)
	_ user.BalanceStore = (*UserRepo)(nil)
)

// UserRepo is the in-memory user table.
type UserRepo struct{ s *Store }

func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	return r.s.do(ctx, func() error {
		for _, existing := range r.s.users {
			if existing.Email == u.Email {
				return apperror.NewDuplicate("user", "email", u.Email)
			}
		}
		r.s.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*user.User, error) {
	var out *user.User
	err := r.s.do(ctx, func() error {
		u, ok := r.s.users[userID]
		if !ok {
			return apperror.NewNotFound("user", userID.String())
		}
		out = &u
		return nil
	})
	return out, err
}

// AddBalance implements user.BalanceStore.
func (r *UserRepo) AddBalance(ctx context.Context, userID id.ID, currency entity.Currency, delta int64) (int64, error) {
	var after int64
	err := r.s.do(ctx, func() error {
		u, ok := r.s.users[userID]
		if !ok {
			return apperror.NewNotFound("user", userID.String())
		}
		var fits bool
		after, fits = addInt64(u.Balance(currency), delta)
		if !fits {
			return errOutOfRange().WithDetail("user_id", userID.String())
		}
		u.SetBalance(currency, after)
		r.s.users[userID] = u
		return nil
	})
	return after, err
}
