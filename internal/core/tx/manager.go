// Package tx defines the unit-of-work contract used by domain services.
// Implementations live in infrastructure/storage (postgres and memory).
package tx

import (
	"context"
)

// Manager runs a function inside one unit of work.
//
// If fn returns an error every write made through ctx is rolled back,
// otherwise all of them become visible together.
// Nested calls reuse the transaction already stored in ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transactions for reads that
// must see one snapshot.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
