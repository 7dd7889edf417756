package user

import (
	"context"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
)

// Repository defines persistence of users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
}

// BalanceStore is the write path for balances.
type BalanceStore interface {
	// AddBalance atomically adds delta to the user's balance in currency and
	// returns the balance after the change. Returns NotFound for unknown users.
	AddBalance(ctx context.Context, userID id.ID, currency entity.Currency, delta int64) (int64, error)
}
