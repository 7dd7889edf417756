package entity

import (
	"fmt"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
)

// Direction is the stock direction of a waybill.
type Direction string

const (
	// DirectionIn increases stock (goods received)
	DirectionIn Direction = "WAYBILL_IN"
	// DirectionOut decreases stock (goods shipped)
	DirectionOut Direction = "WAYBILL_OUT"
	// DirectionReturn increases stock (goods returned by the customer)
	DirectionReturn Direction = "WAYBILL_RETURN"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	switch d {
	case DirectionIn, DirectionOut, DirectionReturn:
		return true
	}
	return false
}

// Sign is +1 for directions that add stock and -1 for DirectionOut.
func (d Direction) Sign() int64 {
	if d == DirectionOut {
		return -1
	}
	return 1
}

// ParseDirection validates a direction coming from outside.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", apperror.NewValidation(fmt.Sprintf("unknown waybill type %q", s)).
			WithDetail("field", "waybillType")
	}
	return d, nil
}

// StockMovement is one immutable row of the stock ledger.
// Exactly one is written per waybill line when the waybill is committed.
type StockMovement struct {
	ID        id.ID     `db:"id" json:"id"`
	OfferID   id.ID     `db:"offer_id" json:"offerId"`
	WaybillID id.ID     `db:"waybill_id" json:"waybillId"`
	LineID    id.ID     `db:"line_id" json:"lineId"`
	Direction Direction `db:"waybill_type" json:"waybillType"`

	// Quantity is unsigned, the sign comes from Direction
	Quantity int64 `db:"quantity" json:"quantity"`

	UserID  id.ID  `db:"user_id" json:"userId"`
	Comment string `db:"comment" json:"comment"`

	// Reverted is reserved; nothing sets it yet
	Reverted bool `db:"reverted" json:"reverted"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewStockMovement creates a movement for one committed line.
func NewStockMovement(waybillID, lineID, offerID, userID id.ID, dir Direction, quantity int64, at time.Time) StockMovement {
	return StockMovement{
		ID:        id.New(),
		OfferID:   offerID,
		WaybillID: waybillID,
		LineID:    lineID,
		Direction: dir,
		Quantity:  quantity,
		UserID:    userID,
		Comment:   fmt.Sprintf("Waybill %s committed", waybillID),
		CreatedAt: at,
	}
}

// SignedQuantity returns quantity with the direction's sign applied.
func (m *StockMovement) SignedQuantity() int64 {
	return m.Direction.Sign() * m.Quantity
}

// Currency of a user balance.
type Currency string

const (
	CurrencyRUB Currency = "RUB"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyTRY Currency = "TRY"
)

// Currencies lists every supported balance currency.
var Currencies = []Currency{CurrencyRUB, CurrencyUSD, CurrencyEUR, CurrencyTRY}

// ParseCurrency validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	for _, c := range Currencies {
		if string(c) == s {
			return c, nil
		}
	}
	return "", apperror.NewValidation(fmt.Sprintf("unsupported currency %q", s)).
		WithDetail("field", "currency")
}

// BalanceReason explains a balance change.
type BalanceReason string

const (
	ReasonWaybillPayment  BalanceReason = "WAYBILL_PAYMENT"
	ReasonAdminAdjustment BalanceReason = "ADMIN_ADJUSTMENT"
	ReasonPromotionCredit BalanceReason = "PROMOTION_CREDIT"
	ReasonOther           BalanceReason = "OTHER"
)

// ParseBalanceReason validates a reason code.
func ParseBalanceReason(s string) (BalanceReason, error) {
	switch r := BalanceReason(s); r {
	case ReasonWaybillPayment, ReasonAdminAdjustment, ReasonPromotionCredit, ReasonOther:
		return r, nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown balance reason %q", s)).
		WithDetail("field", "reason")
}

// BalanceHistory is one immutable row of the balance ledger.
// BalanceAfter always equals BalanceBefore + Delta.
type BalanceHistory struct {
	ID            id.ID         `db:"id" json:"id"`
	UserID        id.ID         `db:"user_id" json:"userId"`
	WaybillID     *id.ID        `db:"waybill_id" json:"waybillId,omitempty"`
	Delta         int64         `db:"delta" json:"delta"`
	Currency      Currency      `db:"currency" json:"currency"`
	BalanceBefore int64         `db:"balance_before" json:"balanceBefore"`
	BalanceAfter  int64         `db:"balance_after" json:"balanceAfter"`
	Reason        BalanceReason `db:"reason" json:"reason"`
	ActorID       *id.ID        `db:"actor_id" json:"actorId,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
}
