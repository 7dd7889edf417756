// Package waybill provides the Waybill document: a draft list of offer lines
// that is committed exactly once, moving stock in its direction.
package waybill

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

// Waybill is the aggregate root. Lines are loaded explicitly by the repository.
type Waybill struct {
	entity.Document

	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// OrderID links the waybill to a storefront order (unique when set)
	OrderID *string `db:"order_id" json:"orderId,omitempty"`

	WaybillType entity.Direction `db:"waybill_type" json:"waybillType"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is an immutable waybill line. Brand, manufacturer number and price are
// copied from the offer when the line is added and never re-read.
type Line struct {
	ID        id.ID `db:"id" json:"id"`
	WaybillID id.ID `db:"waybill_id" json:"waybillId"`
	LineNo    int   `db:"line_no" json:"lineNo"`
	OfferID   id.ID `db:"offer_id" json:"offerId"`
	Quantity  int64 `db:"quantity" json:"quantity"`

	Brand              string      `db:"brand" json:"brand"`
	ManufacturerNumber string      `db:"manufacturer_number" json:"manufacturerNumber"`
	PriceRub           types.Money `db:"price_rub" json:"priceRub"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Amount is price times quantity.
func (l Line) Amount() types.Money {
	return l.PriceRub.Mul(decimal.NewFromInt(l.Quantity))
}

// NewWaybill creates a pending waybill with no lines.
func NewWaybill(authorID, customerID id.ID, direction entity.Direction, note string) *Waybill {
	doc := entity.NewDocument(authorID)
	doc.Note = note
	return &Waybill{
		Document:    doc,
		CustomerID:  customerID,
		WaybillType: direction,
		Lines:       make([]Line, 0),
	}
}

// Validate implements entity.Validatable.
func (w *Waybill) Validate(ctx context.Context) error {
	if err := w.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(w.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if !w.WaybillType.Valid() {
		return apperror.NewValidation("invalid waybill type").
			WithDetail("field", "waybillType").
			WithDetail("value", string(w.WaybillType))
	}
	if w.OrderID != nil && *w.OrderID == "" {
		w.OrderID = nil
	}
	return nil
}

// Total sums line amounts.
func (w *Waybill) Total() types.Money {
	total := types.Zero()
	for _, l := range w.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// OfferIDs returns the distinct offers referenced by the lines.
func (w *Waybill) OfferIDs() []id.ID {
	seen := make(map[id.ID]struct{}, len(w.Lines))
	out := make([]id.ID, 0, len(w.Lines))
	for _, l := range w.Lines {
		if _, ok := seen[l.OfferID]; ok {
			continue
		}
		seen[l.OfferID] = struct{}{}
		out = append(out, l.OfferID)
	}
	return out
}

// GenerateMovements builds one stock movement per line.
func (w *Waybill) GenerateMovements(actingUserID id.ID, at time.Time) []entity.StockMovement {
	movements := make([]entity.StockMovement, 0, len(w.Lines))
	for _, l := range w.Lines {
		movements = append(movements, entity.NewStockMovement(
			w.ID, l.ID, l.OfferID, actingUserID, w.WaybillType, l.Quantity, at,
		))
	}
	return movements
}
