package memory

import (
	"context"
	"sort"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/domain/catalogs/offer"
)

var (
	_ offer.Repository = (*OfferRepo)(nil)
	_ offer.StockStore = (*OfferRepo)(nil)
)

// OfferRepo is the in-memory offer catalog.
type OfferRepo struct{ s *Store }

func (s *Store) Offers() *OfferRepo { return &OfferRepo{s: s} }

func (r *OfferRepo) Create(ctx context.Context, o *offer.Offer) error {
	return r.s.do(ctx, func() error {
		if _, ok := r.s.offers[o.ID]; ok {
			return apperror.NewDuplicate("offer", "id", o.ID.String())
		}
		for _, existing := range r.s.offers {
			if existing.SKU == o.SKU {
				return apperror.NewDuplicate("offer", "sku", o.SKU)
			}
		}
		r.s.offers[o.ID] = *o
		return nil
	})
}

func (r *OfferRepo) GetByID(ctx context.Context, offerID id.ID) (*offer.Offer, error) {
	var out *offer.Offer
	err := r.s.do(ctx, func() error {
		o, ok := r.s.offers[offerID]
		if !ok {
			return apperror.NewNotFound("offer", offerID.String())
		}
		out = &o
		return nil
	})
	return out, err
}

func (r *OfferRepo) Update(ctx context.Context, o *offer.Offer) error {
	return r.s.do(ctx, func() error {
		stored, ok := r.s.offers[o.ID]
		if !ok {
			return apperror.NewNotFound("offer", o.ID.String())
		}
		if stored.Version != o.Version {
			return apperror.NewConcurrentModification("offer", o.ID.String())
		}
		next := *o
		next.Quantity = stored.Quantity
		next.Version = stored.Version + 1
		next.UpdatedAt = time.Now().UTC()
		r.s.offers[o.ID] = next

		o.Quantity = next.Quantity
		o.Version = next.Version
		o.UpdatedAt = next.UpdatedAt
		return nil
	})
}

func (r *OfferRepo) List(ctx context.Context, filter offer.ListFilter) (domain.ListResult[*offer.Offer], error) {
	var out domain.ListResult[*offer.Offer]
	err := r.s.do(ctx, func() error {
		items := make([]*offer.Offer, 0, len(r.s.offers))
		for _, o := range r.s.offers {
			if o.DeletionMark && !filter.IncludeDeleted {
				continue
			}
			if filter.Brand != "" && o.Brand != filter.Brand {
				continue
			}
			if filter.Search != "" && !contains(o.SKU, filter.Search) &&
				!contains(o.Brand, filter.Search) && !contains(o.ManufacturerNumber, filter.Search) {
				continue
			}
			o := o
			items = append(items, &o)
		}
		sort.Slice(items, func(i, j int) bool { return items[i].SKU < items[j].SKU })
		out = paginate(items, filter.ListFilter)
		return nil
	})
	return out, err
}

// AddQuantity implements offer.StockStore.
func (r *OfferRepo) AddQuantity(ctx context.Context, offerID id.ID, delta int64) (int64, error) {
	var after int64
	err := r.s.do(ctx, func() error {
		o, ok := r.s.offers[offerID]
		if !ok {
			return apperror.NewNotFound("offer", offerID.String())
		}
		q, ok := addInt64(o.Quantity, delta)
		if !ok {
			return errOutOfRange().WithDetail("offer_id", offerID.String())
		}
		o.Quantity = q
		r.s.offers[offerID] = o
		after = o.Quantity
		return nil
	})
	return after, err
}
