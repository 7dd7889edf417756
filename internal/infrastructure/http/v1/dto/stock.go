package dto

import (
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/registers/stock"
)

// MovementQuery filters an offer's movement history.
type MovementQuery struct {
	WaybillType string     `form:"waybillType"`
	FromDate    *time.Time `form:"fromDate" time_format:"2006-01-02T15:04:05Z07:00"`
	ToDate      *time.Time `form:"toDate" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit       int        `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset      int        `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a domain filter.
func (q *MovementQuery) ToFilter() (stock.MovementFilter, error) {
	f := stock.MovementFilter{FromDate: q.FromDate, ToDate: q.ToDate, Limit: q.Limit, Offset: q.Offset}
	if q.WaybillType != "" {
		dir, err := entity.ParseDirection(q.WaybillType)
		if err != nil {
			return f, err
		}
		f.Direction = &dir
	}
	return f, nil
}

// TurnoverQuery selects the turnover period and, optionally, one offer.
type TurnoverQuery struct {
	OfferID  string    `form:"offerId"`
	FromDate time.Time `form:"fromDate" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	ToDate   time.Time `form:"toDate" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ToFilter converts the query into a domain filter.
func (q *TurnoverQuery) ToFilter() (stock.TurnoverFilter, error) {
	f := stock.TurnoverFilter{FromDate: q.FromDate, ToDate: q.ToDate}
	if q.OfferID != "" {
		v, err := id.Parse(q.OfferID)
		if err != nil {
			return f, apperror.NewValidation("invalid offer id").WithDetail("field", "offerId")
		}
		f.OfferID = &v
	}
	return f, nil
}
