package waybill

import (
	"context"
	"time"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
)

// Repository defines operations for waybills and their lines.
type Repository interface {
	Create(ctx context.Context, w *Waybill) error

	// GetByID returns the header only; use GetLines for the lines.
	GetByID(ctx context.Context, waybillID id.ID) (*Waybill, error)

	// GetForUpdate returns the header and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, waybillID id.ID) (*Waybill, error)

	// GetLines returns lines ordered by line number.
	GetLines(ctx context.Context, waybillID id.ID) ([]Line, error)

	// InsertLine appends a line. Persisted lines are never updated.
	InsertLine(ctx context.Context, line *Line) error

	// DeleteLine removes one line of the waybill.
	// It returns a NotFound error when the line does not belong to it.
	DeleteLine(ctx context.Context, waybillID, lineID id.ID) error

	// MarkCommitted flips is_pending from true to false in a single conditional
	// write. It reports false when the waybill was not pending (or does not exist).
	MarkCommitted(ctx context.Context, waybillID, committedBy id.ID, at time.Time) (bool, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Waybill], error)
}

// ListFilter for filtering waybills.
type ListFilter struct {
	domain.ListFilter

	Pending     *bool
	WaybillType *entity.Direction
	CustomerID  *id.ID
	AuthorID    *id.ID
	DateFrom    *time.Time
	DateTo      *time.Time
}
