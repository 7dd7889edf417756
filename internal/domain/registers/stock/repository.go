// Package stock provides the stock movement ledger: an append-only record of
// every quantity change applied to an offer.
package stock

import (
	"context"
	"time"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
)

// Repository defines operations for the stock ledger. Rows are never updated or deleted.
type Repository interface {
	// CreateMovements batch inserts movements (used during commit)
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// GetMovementsByWaybill retrieves all movements written by a waybill
	GetMovementsByWaybill(ctx context.Context, waybillID id.ID) ([]entity.StockMovement, error)

	// GetMovementHistory returns movement history for an offer, newest first
	GetMovementHistory(ctx context.Context, offerID id.ID, filter MovementFilter) ([]entity.StockMovement, error)

	// GetTurnover calculates incoming and outgoing totals for a period
	GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error)
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	Direction *entity.Direction
	FromDate  *time.Time
	ToDate    *time.Time
	Limit     int
	Offset    int
}

// TurnoverFilter for turnover reports.
type TurnoverFilter struct {
	OfferID  *id.ID
	FromDate time.Time
	ToDate   time.Time
}

// Turnover is the ledger-derived stock flow for a period.
// Balances are sums of signed movements, so they exclude stock that
// existed before the ledger started.
type Turnover struct {
	OfferID        *id.ID `json:"offerId,omitempty"`
	OpeningBalance int64  `json:"openingBalance"`
	Incoming       int64  `json:"incoming"`
	Outgoing       int64  `json:"outgoing"`
	ClosingBalance int64  `json:"closingBalance"`
}
