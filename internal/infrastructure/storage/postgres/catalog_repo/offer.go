package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/domain/catalogs/offer"
	"backoffice/internal/infrastructure/storage/postgres"
)

const offerTable = "cat_offers"

var (
	_ offer.Repository = (*OfferRepo)(nil)
	_ offer.StockStore = (*OfferRepo)(nil)
)

// OfferRepo persists offers in cat_offers. quantity is written only by AddQuantity.
type OfferRepo struct {
	*BaseCatalogRepo[*offer.Offer]
}

// NewOfferRepo creates a new offer repository.
func NewOfferRepo(txManager *postgres.TxManager) *OfferRepo {
	return &OfferRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			offerTable,
			"offer",
			postgres.ExtractDBColumns[offer.Offer](),
			[]string{"quantity"},
			func() *offer.Offer { return &offer.Offer{} },
		),
	}
}

// Update writes catalog fields and refreshes version, quantity and updated_at from the row.
func (r *OfferRepo) Update(ctx context.Context, o *offer.Offer) error {
	sql, args, err := r.updateQuery(postgres.StructToMap(o), o.Version).
		Suffix("RETURNING version, quantity, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&o.Version, &o.Quantity, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewConcurrentModification("offer", o.ID.String())
	}
	if err != nil {
		return postgres.MapConstraintError(fmt.Errorf("update offer: %w", err), "offer")
	}
	return nil
}

// List searches SKU, brand and manufacturer number.
func (r *OfferRepo) List(ctx context.Context, filter offer.ListFilter) (domain.ListResult[*offer.Offer], error) {
	return r.ListPage(ctx, r.listQuery(filter), "sku ASC", filter.ListFilter)
}

func (r *OfferRepo) listQuery(filter offer.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect()
	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"is_deleted": false})
	}
	if filter.Brand != "" {
		q = q.Where(squirrel.Eq{"brand": filter.Brand})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"sku": pattern},
			squirrel.ILike{"brand": pattern},
			squirrel.ILike{"manufacturer_number": pattern},
		})
	}
	return q
}

// AddQuantity implements offer.StockStore with a single atomic increment.
// The row lock it takes is held until the surrounding transaction ends,
// which serialises concurrent commits touching the same offer.
func (r *OfferRepo) AddQuantity(ctx context.Context, offerID id.ID, delta int64) (int64, error) {
	sql, args, err := r.Builder().
		Update(offerTable).
		Set("quantity", squirrel.Expr("quantity + ?", delta)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": offerID}).
		Suffix("RETURNING quantity").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build quantity update: %w", err)
	}

	var after int64
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&after)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewNotFound("offer", offerID.String())
	}
	if err != nil {
		return 0, postgres.MapConstraintError(fmt.Errorf("add offer quantity: %w", err), "offer")
	}
	return after, nil
}
