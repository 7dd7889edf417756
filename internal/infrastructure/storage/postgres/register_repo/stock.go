// Package register_repo provides PostgreSQL implementations of the stock and
// balance ledgers.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/registers/stock"
	"backoffice/internal/infrastructure/storage/postgres"
)

const stockMovementsTable = "reg_stock_movements"

var movementColumns = []string{
	"id", "offer_id", "waybill_id", "line_id", "waybill_type",
	"quantity", "user_id", "comment", "reverted", "created_at",
}

// signedQuantity is the SQL form of StockMovement.SignedQuantity.
const signedQuantity = "CASE WHEN waybill_type = 'WAYBILL_OUT' THEN -quantity ELSE quantity END"

var _ stock.Repository = (*StockRepo)(nil)

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func movementRow(m entity.StockMovement) []any {
	return []any{
		m.ID, m.OfferID, m.WaybillID, m.LineID, string(m.Direction),
		m.Quantity, m.UserID, m.Comment, m.Reverted, m.CreatedAt,
	}
}

// CreateMovements appends movements. Large waybills go through COPY,
// small ones through a single multi-row INSERT.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	if len(movements) >= postgres.CopyThreshold && r.txManager.InTransaction(ctx) {
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, movementRow(m))
		}
		if _, err := r.inserter.CopyFromSlice(ctx, stockMovementsTable, movementColumns, rows); err != nil {
			return postgres.MapConstraintError(fmt.Errorf("copy movements: %w", err), "stock movement")
		}
		return nil
	}

	q := r.builder.Insert(stockMovementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(movementRow(m)...)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapConstraintError(fmt.Errorf("insert movements: %w", err), "stock movement")
	}
	return nil
}

func (r *StockRepo) selectMovements() squirrel.SelectBuilder {
	return r.builder.Select(movementColumns...).From(stockMovementsTable)
}

func (r *StockRepo) GetMovementsByWaybill(ctx context.Context, waybillID id.ID) ([]entity.StockMovement, error) {
	sql, args, err := r.selectMovements().
		Where(squirrel.Eq{"waybill_id": waybillID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]entity.StockMovement, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("get movements by waybill: %w", err)
	}
	return out, nil
}

func (r *StockRepo) GetMovementHistory(ctx context.Context, offerID id.ID, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	sql, args, err := r.historyQuery(offerID, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]entity.StockMovement, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("get movement history: %w", err)
	}
	return out, nil
}

func (r *StockRepo) historyQuery(offerID id.ID, f stock.MovementFilter) squirrel.SelectBuilder {
	q := r.selectMovements().Where(squirrel.Eq{"offer_id": offerID})
	if f.Direction != nil {
		q = q.Where(squirrel.Eq{"waybill_type": string(*f.Direction)})
	}
	if f.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.FromDate})
	}
	if f.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *f.ToDate})
	}
	q = q.OrderBy("created_at DESC", "id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}

// GetTurnover sums movements before the period into the opening balance and
// movements inside it into incoming and outgoing totals, in one scan.
func (r *StockRepo) GetTurnover(ctx context.Context, filter stock.TurnoverFilter) (stock.Turnover, error) {
	result := stock.Turnover{OfferID: filter.OfferID}

	sql, args, err := r.turnoverQuery(filter).ToSql()
	if err != nil {
		return result, fmt.Errorf("build turnover query: %w", err)
	}

	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).
		Scan(&result.OpeningBalance, &result.Incoming, &result.Outgoing)
	if err != nil {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}
	result.ClosingBalance = result.OpeningBalance + result.Incoming - result.Outgoing
	return result, nil
}

func (r *StockRepo) turnoverQuery(f stock.TurnoverFilter) squirrel.SelectBuilder {
	inPeriod := "created_at >= ?"
	periodArgs := []any{f.FromDate}
	if !f.ToDate.IsZero() {
		inPeriod += " AND created_at <= ?"
		periodArgs = append(periodArgs, f.ToDate)
	}

	opening := squirrel.Expr(
		"COALESCE(SUM(CASE WHEN created_at < ? THEN "+signedQuantity+" ELSE 0 END), 0)::bigint",
		f.FromDate)
	incoming := squirrel.Expr(
		"COALESCE(SUM(CASE WHEN "+inPeriod+" AND waybill_type <> 'WAYBILL_OUT' THEN quantity ELSE 0 END), 0)::bigint",
		periodArgs...)
	outgoing := squirrel.Expr(
		"COALESCE(SUM(CASE WHEN "+inPeriod+" AND waybill_type = 'WAYBILL_OUT' THEN quantity ELSE 0 END), 0)::bigint",
		periodArgs...)

	q := r.builder.
		Select().
		Column(opening).
		Column(incoming).
		Column(outgoing).
		From(stockMovementsTable)
	if f.OfferID != nil {
		q = q.Where(squirrel.Eq{"offer_id": *f.OfferID})
	}
	return q
}
