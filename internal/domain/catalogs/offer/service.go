package offer

import (
	"context"
	"fmt"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/tx"
	"backoffice/internal/core/types"
	"backoffice/internal/domain"
	"backoffice/pkg/logger"
)

// Service provides business logic for the Offer catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
	cache     Cache
}

// NewService creates the offer service. cache may be nil.
func NewService(repo Repository, txManager tx.Manager, cache Cache) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		cache:     cache,
	}
}

// Create registers a new offer. Stock always starts at zero and is
// brought in by committing an incoming waybill.
func (s *Service) Create(ctx context.Context, o *Offer) error {
	o.Quantity = 0
	if err := o.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create offer: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "offer created", "offer_id", o.ID, "sku", o.SKU)
	return nil
}

// GetByID reads through the cache. Cache failures are logged and bypassed.
func (s *Service) GetByID(ctx context.Context, offerID id.ID) (*Offer, error) {
	if cached, ok, err := s.cache.Get(ctx, offerID); err != nil {
		logger.Warn(ctx, "offer cache read failed", "offer_id", offerID, "error", err)
	} else if ok {
		return cached, nil
	}

	o, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, o); err != nil {
		logger.Warn(ctx, "offer cache write failed", "offer_id", offerID, "error", err)
	}
	return o, nil
}

// UpdateInput carries editable catalog fields. Quantity is not editable.
type UpdateInput struct {
	Version                int
	Brand                  *string
	ManufacturerNumber     *string
	PriceRub               *types.Money
	SuperWholesalePriceRub *types.Money
	IsDeleted              *bool
}

// Update edits catalog fields under optimistic locking.
// Line snapshots taken earlier keep their values.
func (s *Service) Update(ctx context.Context, offerID id.ID, in UpdateInput) (*Offer, error) {
	var updated *Offer
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetByID(ctx, offerID)
		if err != nil {
			return err
		}
		if in.Version != 0 && in.Version != o.Version {
			return apperror.NewConcurrentModification("offer", offerID.String())
		}

		if in.Brand != nil {
			o.Brand = *in.Brand
		}
		if in.ManufacturerNumber != nil {
			o.ManufacturerNumber = *in.ManufacturerNumber
		}
		if in.PriceRub != nil {
			o.PriceRub = *in.PriceRub
		}
		if in.SuperWholesalePriceRub != nil {
			o.SuperWholesalePriceRub = *in.SuperWholesalePriceRub
		}
		if in.IsDeleted != nil {
			o.DeletionMark = *in.IsDeleted
		}
		if err := o.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("update offer: %w", err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx, offerID)
	logger.Info(ctx, "offer updated", "offer_id", offerID, "version", updated.Version)
	return updated, nil
}

// List retrieves offers with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Offer], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}

// Invalidate drops cached copies after their stock or fields changed.
func (s *Service) Invalidate(ctx context.Context, offerIDs ...id.ID) {
	if len(offerIDs) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, offerIDs...); err != nil {
		logger.Warn(ctx, "offer cache invalidation failed", "count", len(offerIDs), "error", err)
	}
}
