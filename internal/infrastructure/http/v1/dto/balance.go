package dto

import (
	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/registers/balance"
)

// AdjustBalanceRequest moves a user balance by delta minor units.
type AdjustBalanceRequest struct {
	Delta     int64   `json:"delta"`
	Currency  string  `json:"currency" binding:"required"`
	Reason    string  `json:"reason" binding:"required"`
	WaybillID *string `json:"waybillId,omitempty"`
}

// ToInput converts the request into the service input.
func (r *AdjustBalanceRequest) ToInput(userID id.ID, actorID *id.ID) (balance.AdjustInput, error) {
	currency, err := entity.ParseCurrency(r.Currency)
	if err != nil {
		return balance.AdjustInput{}, err
	}
	reason, err := entity.ParseBalanceReason(r.Reason)
	if err != nil {
		return balance.AdjustInput{}, err
	}
	in := balance.AdjustInput{
		UserID:   userID,
		Delta:    r.Delta,
		Currency: currency,
		Reason:   reason,
		ActorID:  actorID,
	}
	if r.WaybillID != nil && *r.WaybillID != "" {
		waybillID, err := id.Parse(*r.WaybillID)
		if err != nil {
			return balance.AdjustInput{}, apperror.NewValidation("invalid waybill id").WithDetail("field", "waybillId")
		}
		in.WaybillID = &waybillID
	}
	return in, nil
}

// BalanceHistoryQuery holds history list filters.
type BalanceHistoryQuery struct {
	PageQuery
	Currency string `form:"currency"`
}

// ToFilter converts the query into a domain filter.
func (q *BalanceHistoryQuery) ToFilter() (balance.HistoryFilter, error) {
	f := balance.HistoryFilter{ListFilter: q.PageQuery.ToListFilter()}
	if q.Currency != "" {
		c, err := entity.ParseCurrency(q.Currency)
		if err != nil {
			return f, err
		}
		f.Currency = &c
	}
	return f, nil
}
