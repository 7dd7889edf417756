package dto

import (
	"time"

	"backoffice/internal/core/types"
	"backoffice/internal/domain/catalogs/offer"
)

// CreateOfferRequest creates an offer with zero stock.
type CreateOfferRequest struct {
	SKU                    string      `json:"sku" binding:"required"`
	ProductID              *string     `json:"productId,omitempty"`
	Brand                  string      `json:"brand"`
	ManufacturerNumber     string      `json:"manufacturerNumber"`
	PriceRub               types.Money `json:"priceRub"`
	SuperWholesalePriceRub types.Money `json:"superWholesalePriceRub"`
}

// ToEntity converts request to domain entity.
func (r *CreateOfferRequest) ToEntity() *offer.Offer {
	o := offer.NewOffer(r.SKU, r.Brand, r.ManufacturerNumber, r.PriceRub, r.SuperWholesalePriceRub)
	o.ProductID = r.ProductID
	return o
}

// UpdateOfferRequest edits catalog fields. Stock is not editable here.
type UpdateOfferRequest struct {
	Version                int          `json:"version"`
	Brand                  *string      `json:"brand,omitempty"`
	ManufacturerNumber     *string      `json:"manufacturerNumber,omitempty"`
	PriceRub               *types.Money `json:"priceRub,omitempty"`
	SuperWholesalePriceRub *types.Money `json:"superWholesalePriceRub,omitempty"`
	IsDeleted              *bool        `json:"isDeleted,omitempty"`
}

// ToInput converts the request into the service input.
func (r *UpdateOfferRequest) ToInput() offer.UpdateInput {
	return offer.UpdateInput{
		Version:                r.Version,
		Brand:                  r.Brand,
		ManufacturerNumber:     r.ManufacturerNumber,
		PriceRub:               r.PriceRub,
		SuperWholesalePriceRub: r.SuperWholesalePriceRub,
		IsDeleted:              r.IsDeleted,
	}
}

// OfferResponse is the API view of an offer.
type OfferResponse struct {
	ID                     string      `json:"id"`
	Version                int         `json:"version"`
	IsDeleted              bool        `json:"isDeleted"`
	SKU                    string      `json:"sku"`
	ProductID              *string     `json:"productId,omitempty"`
	Brand                  string      `json:"brand"`
	ManufacturerNumber     string      `json:"manufacturerNumber"`
	PriceRub               types.Money `json:"priceRub"`
	SuperWholesalePriceRub types.Money `json:"superWholesalePriceRub"`
	Quantity               int64       `json:"quantity"`
	CreatedAt              time.Time   `json:"createdAt"`
	UpdatedAt              time.Time   `json:"updatedAt"`
}

// FromOffer maps a domain offer.
func FromOffer(o *offer.Offer) OfferResponse {
	return OfferResponse{
		ID:                     o.ID.String(),
		Version:                o.Version,
		IsDeleted:              o.DeletionMark,
		SKU:                    o.SKU,
		ProductID:              o.ProductID,
		Brand:                  o.Brand,
		ManufacturerNumber:     o.ManufacturerNumber,
		PriceRub:               o.PriceRub,
		SuperWholesalePriceRub: o.SuperWholesalePriceRub,
		Quantity:               o.Quantity,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
}
