// Package offer provides the Offer catalog: sellable stock units with prices
// and an on-hand quantity that only the commit engine changes.
package offer

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/types"
)

// Offer is a stock unit identified by SKU.
type Offer struct {
	entity.BaseCatalog

	SKU       string  `db:"sku" json:"sku"`
	ProductID *string `db:"product_id" json:"productId,omitempty"`

	Brand              string `db:"brand" json:"brand"`
	ManufacturerNumber string `db:"manufacturer_number" json:"manufacturerNumber"`

	// PriceRub is the retail price
	PriceRub types.Money `db:"price_rub" json:"priceRub"`
	// SuperWholesalePriceRub is the price for super-wholesale customers
	SuperWholesalePriceRub types.Money `db:"super_wholesale_price_rub" json:"superWholesalePriceRub"`

	// Quantity is on-hand stock. It may be negative: shipping more than is on hand is not blocked.
	Quantity int64 `db:"quantity" json:"quantity"`
}

// NewOffer creates an offer with zero stock.
func NewOffer(sku, brand, manufacturerNumber string, price, superWholesalePrice types.Money) *Offer {
	return &Offer{
		BaseCatalog:            entity.NewBaseCatalog(),
		SKU:                    strings.TrimSpace(sku),
		Brand:                  strings.TrimSpace(brand),
		ManufacturerNumber:     strings.TrimSpace(manufacturerNumber),
		PriceRub:               price,
		SuperWholesalePriceRub: superWholesalePrice,
	}
}

// Validate implements entity.Validatable.
func (o *Offer) Validate(ctx context.Context) error {
	if o.SKU == "" {
		return apperror.NewValidation("sku is required").
			WithDetail("field", "sku")
	}
	if o.PriceRub.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "priceRub")
	}
	if o.SuperWholesalePriceRub.IsNegative() {
		return apperror.NewValidation("super wholesale price cannot be negative").
			WithDetail("field", "superWholesalePriceRub")
	}
	return nil
}

// PriceFor returns the unit price for a customer type.
// Wholesale customers pay the midpoint of retail and super-wholesale,
// rounded to whole roubles with half-to-even.
func (o *Offer) PriceFor(ct entity.CustomerType) types.Money {
	switch ct {
	case entity.CustomerSuperWholesale:
		return o.SuperWholesalePriceRub
	case entity.CustomerWholesale:
		return o.PriceRub.Add(o.SuperWholesalePriceRub).Div(decimal.NewFromInt(2)).RoundBank(0)
	default:
		return o.PriceRub
	}
}
