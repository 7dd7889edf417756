// Package balance provides the user balance ledger and the adjustment
// service that keeps balances and their history in step.
package balance

import (
	"context"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
)

// Repository persists balance history rows. Rows are never updated or deleted.
type Repository interface {
	Create(ctx context.Context, h *entity.BalanceHistory) error

	// ListByUser returns history rows of a user, newest first
	ListByUser(ctx context.Context, userID id.ID, filter HistoryFilter) (domain.ListResult[*entity.BalanceHistory], error)
}

// HistoryFilter narrows a user's history.
type HistoryFilter struct {
	domain.ListFilter

	Currency *entity.Currency
}
