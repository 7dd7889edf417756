package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/domain/registers/balance"
	"backoffice/internal/infrastructure/storage/postgres"
)

const balanceHistoryTable = "reg_balance_history"

var _ balance.Repository = (*BalanceRepo)(nil)

// BalanceRepo implements balance.Repository.
type BalanceRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	cols      []string
}

// NewBalanceRepo creates a new balance history repository.
func NewBalanceRepo(txManager *postgres.TxManager) *BalanceRepo {
	return &BalanceRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cols:      postgres.ExtractDBColumns[entity.BalanceHistory](),
	}
}

func (r *BalanceRepo) Create(ctx context.Context, h *entity.BalanceHistory) error {
	sql, args, err := r.builder.Insert(balanceHistoryTable).SetMap(postgres.StructToMap(h)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapConstraintError(fmt.Errorf("insert balance history: %w", err), "balance history")
	}
	return nil
}

func (r *BalanceRepo) ListByUser(ctx context.Context, userID id.ID, filter balance.HistoryFilter) (domain.ListResult[*entity.BalanceHistory], error) {
	page := filter.ListFilter.Normalize()
	result := domain.ListResult[*entity.BalanceHistory]{
		Items:  make([]*entity.BalanceHistory, 0),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	querier := r.txManager.GetQuerier(ctx)
	where := r.where(userID, filter)

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(balanceHistoryTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count balance history: %w", err)
	}

	sql, args, err := r.builder.Select(r.cols...).
		From(balanceHistoryTable).
		Where(where).
		OrderBy("id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list balance history: %w", err)
	}
	return result, nil
}

func (r *BalanceRepo) where(userID id.ID, f balance.HistoryFilter) squirrel.And {
	where := squirrel.And{squirrel.Eq{"user_id": userID}}
	if f.Currency != nil {
		where = append(where, squirrel.Eq{"currency": string(*f.Currency)})
	}
	return where
}
