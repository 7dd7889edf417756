// Package catalog_repo provides PostgreSQL implementations of the offer and
// user catalogs.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides the CRUD shared by catalog tables.
// Columns listed in readOnly are selected but never written by Update.
type BaseCatalogRepo[T any] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	readOnly   map[string]bool
	newFn      func() T
}

// NewBaseCatalogRepo creates a new base catalog repository.
func NewBaseCatalogRepo[T any](
	txManager *postgres.TxManager,
	tableName, entityName string,
	selectCols []string,
	readOnly []string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	ro := map[string]bool{"id": true, "version": true, "created_at": true}
	for _, c := range readOnly {
		ro[c] = true
	}
	return &BaseCatalogRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		readOnly:   ro,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseCatalogRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	sql, args, err := r.insertQuery(entity).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapConstraintError(fmt.Errorf("insert %s: %w", r.tableName, err), r.entityName)
	}
	return nil
}

func (r *BaseCatalogRepo[T]) insertQuery(entity T) squirrel.InsertBuilder {
	data := postgres.StructToMap(entity)
	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if v, ok := data[col]; ok {
			values[col] = v
		}
	}
	return r.Builder().Insert(r.tableName).SetMap(values)
}

// Update writes mutable columns with optimistic locking and bumps version.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	entityID := data["id"]

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("%s has no int version column", r.tableName)
	}

	sql, args, err := r.updateQuery(data, version).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapConstraintError(fmt.Errorf("update %s: %w", r.tableName, err), r.entityName)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.entityName, entityID)
	}
	return nil
}

func (r *BaseCatalogRepo[T]) updateQuery(data map[string]any, version int) squirrel.UpdateBuilder {
	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if r.readOnly[col] {
			continue
		}
		if v, ok := data[col]; ok {
			values[col] = v
		}
	}
	values["updated_at"] = squirrel.Expr("NOW()")

	return r.Builder().
		Update(r.tableName).
		SetMap(values).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": data["id"]}).
		Where(squirrel.Eq{"version": version})
}

func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// GetByID retrieves entity by ID.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Limit(1), entityID.String())
}

// FindOne executes a SELECT query and returns a single entity.
func (r *BaseCatalogRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, key)
		}
		return entity, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return entity, nil
}

// ListPage counts q, then returns one ordered page of it.
func (r *BaseCatalogRepo[T]) ListPage(ctx context.Context, q squirrel.SelectBuilder, orderBy string, page domain.ListFilter) (domain.ListResult[T], error) {
	page = page.Normalize()
	result := domain.ListResult[T]{Limit: page.Limit, Offset: page.Offset, Items: make([]T, 0)}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	sql, args, err := q.OrderBy(orderBy).
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return result, nil
}
