package offer

import (
	"context"

	"backoffice/internal/core/id"
	"backoffice/internal/domain"
)

// ListFilter narrows offer listings.
type ListFilter struct {
	domain.ListFilter

	Brand          string
	IncludeDeleted bool
}

// Repository defines persistence of the Offer catalog.
type Repository interface {
	Create(ctx context.Context, o *Offer) error

	GetByID(ctx context.Context, offerID id.ID) (*Offer, error)

	// Update writes catalog fields with optimistic locking on Version.
	// It never writes Quantity.
	Update(ctx context.Context, o *Offer) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Offer], error)
}

// StockStore is the write path for offer quantities.
type StockStore interface {
	// AddQuantity atomically adds delta to the offer's quantity and returns the new value.
	// Returns NotFound if the offer does not exist.
	AddQuantity(ctx context.Context, offerID id.ID, delta int64) (int64, error)
}

// Cache is a read-through cache of offers keyed by id.
type Cache interface {
	Get(ctx context.Context, offerID id.ID) (*Offer, bool, error)
	Set(ctx context.Context, o *Offer) error
	Invalidate(ctx context.Context, offerIDs ...id.ID) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, id.ID) (*Offer, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, *Offer) error                { return nil }
func (noopCache) Invalidate(context.Context, ...id.ID) error       { return nil }
