package dto

import (
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/documents/waybill"
)

// CreateWaybillRequest creates a pending waybill.
type CreateWaybillRequest struct {
	CustomerID  string  `json:"customerId" binding:"required"`
	WaybillType string  `json:"waybillType" binding:"required"`
	OrderID     *string `json:"orderId,omitempty"`
	Note        string  `json:"note,omitempty"`
}

// ToEntity converts request to domain entity authored by authorID.
func (r *CreateWaybillRequest) ToEntity(authorID id.ID) (*waybill.Waybill, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return nil, apperror.NewValidation("invalid customer id").WithDetail("field", "customerId")
	}
	dir, err := entity.ParseDirection(r.WaybillType)
	if err != nil {
		return nil, err
	}
	w := waybill.NewWaybill(authorID, customerID, dir, r.Note)
	w.OrderID = r.OrderID
	return w, nil
}

// CreateWaybillWithLinesRequest creates a waybill and its lines at once.
type CreateWaybillWithLinesRequest struct {
	CreateWaybillRequest
	Lines []AddLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// AddLineRequest appends a line. Omitted snapshot fields are taken from the offer.
type AddLineRequest struct {
	OfferID            string       `json:"offerId" binding:"required"`
	Quantity           int64        `json:"quantity"`
	PriceRub           *types.Money `json:"priceRub,omitempty"`
	Brand              *string      `json:"brand,omitempty"`
	ManufacturerNumber *string      `json:"manufacturerNumber,omitempty"`
}

// ToInput converts the request into the service input.
func (r *AddLineRequest) ToInput() (waybill.AddLineInput, error) {
	offerID, err := id.Parse(r.OfferID)
	if err != nil {
		return waybill.AddLineInput{}, apperror.NewValidation("invalid offer id").WithDetail("field", "offerId")
	}
	return waybill.AddLineInput{
		OfferID:            offerID,
		Quantity:           r.Quantity,
		PriceRub:           r.PriceRub,
		Brand:              r.Brand,
		ManufacturerNumber: r.ManufacturerNumber,
	}, nil
}

// LineResponse is the API view of a waybill line.
type LineResponse struct {
	ID                 string      `json:"id"`
	LineNo             int         `json:"lineNo"`
	OfferID            string      `json:"offerId"`
	Quantity           int64       `json:"quantity"`
	Brand              string      `json:"brand"`
	ManufacturerNumber string      `json:"manufacturerNumber"`
	PriceRub           types.Money `json:"priceRub"`
	Amount             types.Money `json:"amount"`
}

// FromLine maps a domain line.
func FromLine(l waybill.Line) LineResponse {
	return LineResponse{
		ID:                 l.ID.String(),
		LineNo:             l.LineNo,
		OfferID:            l.OfferID.String(),
		Quantity:           l.Quantity,
		Brand:              l.Brand,
		ManufacturerNumber: l.ManufacturerNumber,
		PriceRub:           l.PriceRub,
		Amount:             l.Amount(),
	}
}

// WaybillResponse is the API view of a waybill.
type WaybillResponse struct {
	ID          string         `json:"id"`
	Version     int            `json:"version"`
	WaybillType string         `json:"waybillType"`
	CustomerID  string         `json:"customerId"`
	AuthorID    string         `json:"authorId"`
	OrderID     *string        `json:"orderId,omitempty"`
	IsPending   bool           `json:"isPending"`
	CommittedAt *time.Time     `json:"committedAt,omitempty"`
	CommittedBy *string        `json:"committedBy,omitempty"`
	Note        string         `json:"note,omitempty"`
	Total       types.Money    `json:"total"`
	Lines       []LineResponse `json:"lines"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// FromWaybill maps a domain waybill. Lines are included when loaded.
func FromWaybill(w *waybill.Waybill) WaybillResponse {
	lines := make([]LineResponse, 0, len(w.Lines))
	for _, l := range w.Lines {
		lines = append(lines, FromLine(l))
	}
	var committedBy *string
	if w.CommittedBy != nil {
		s := w.CommittedBy.String()
		committedBy = &s
	}
	return WaybillResponse{
		ID:          w.ID.String(),
		Version:     w.Version,
		WaybillType: string(w.WaybillType),
		CustomerID:  w.CustomerID.String(),
		AuthorID:    w.AuthorID.String(),
		OrderID:     w.OrderID,
		IsPending:   w.Pending,
		CommittedAt: w.CommittedAt,
		CommittedBy: committedBy,
		Note:        w.Note,
		Total:       w.Total(),
		Lines:       lines,
		CreatedAt:   w.CreatedAt,
	}
}

// WaybillListQuery holds waybill list filters.
type WaybillListQuery struct {
	PageQuery
	Pending     *bool      `form:"pending"`
	WaybillType string     `form:"waybillType"`
	CustomerID  string     `form:"customerId"`
	AuthorID    string     `form:"authorId"`
	DateFrom    *time.Time `form:"dateFrom" time_format:"2006-01-02T15:04:05Z07:00"`
	DateTo      *time.Time `form:"dateTo" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ToFilter converts the query into a domain filter.
func (q *WaybillListQuery) ToFilter() (waybill.ListFilter, error) {
	f := waybill.ListFilter{
		ListFilter: q.PageQuery.ToListFilter(),
		Pending:    q.Pending,
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
	}
	if q.WaybillType != "" {
		dir, err := entity.ParseDirection(q.WaybillType)
		if err != nil {
			return f, err
		}
		f.WaybillType = &dir
	}
	if q.CustomerID != "" {
		v, err := id.Parse(q.CustomerID)
		if err != nil {
			return f, apperror.NewValidation("invalid customer id").WithDetail("field", "customerId")
		}
		f.CustomerID = &v
	}
	if q.AuthorID != "" {
		v, err := id.Parse(q.AuthorID)
		if err != nil {
			return f, apperror.NewValidation("invalid author id").WithDetail("field", "authorId")
		}
		f.AuthorID = &v
	}
	return f, nil
}
