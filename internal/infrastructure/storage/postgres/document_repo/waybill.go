// Package document_repo provides the PostgreSQL implementation of the waybill repository.
package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/domain/documents/waybill"
	"backoffice/internal/infrastructure/storage/postgres"
)

const (
	waybillTable = "doc_waybills"
	lineTable    = "doc_waybill_lines"
)

var _ waybill.Repository = (*WaybillRepo)(nil)

// WaybillRepo persists waybill headers and their lines.
type WaybillRepo struct {
	txManager  *postgres.TxManager
	headerCols []string
	lineCols   []string
}

// NewWaybillRepo creates a new waybill repository.
func NewWaybillRepo(txManager *postgres.TxManager) *WaybillRepo {
	return &WaybillRepo{
		txManager:  txManager,
		headerCols: postgres.ExtractDBColumns[waybill.Waybill](),
		lineCols:   postgres.ExtractDBColumns[waybill.Line](),
	}
}

func (r *WaybillRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *WaybillRepo) exec(ctx context.Context, q squirrel.Sqlizer, what string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", what, err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapConstraintError(fmt.Errorf("%s: %w", what, err), "waybill")
	}
	return nil
}

// Create inserts the header. Lines are inserted one by one with InsertLine.
func (r *WaybillRepo) Create(ctx context.Context, w *waybill.Waybill) error {
	data := postgres.StructToMap(w)
	values := make(map[string]any, len(r.headerCols))
	for _, col := range r.headerCols {
		values[col] = data[col]
	}
	return r.exec(ctx, r.builder().Insert(waybillTable).SetMap(values), "insert waybill")
}

func (r *WaybillRepo) getHeader(ctx context.Context, waybillID id.ID, suffix string) (*waybill.Waybill, error) {
	q := r.builder().
		Select(r.headerCols...).
		From(waybillTable).
		Where(squirrel.Eq{"id": waybillID})
	if suffix != "" {
		q = q.Suffix(suffix)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w waybill.Waybill
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("waybill", waybillID.String())
		}
		return nil, fmt.Errorf("get waybill: %w", err)
	}
	w.Lines = make([]waybill.Line, 0)
	return &w, nil
}

func (r *WaybillRepo) GetByID(ctx context.Context, waybillID id.ID) (*waybill.Waybill, error) {
	return r.getHeader(ctx, waybillID, "")
}

func (r *WaybillRepo) GetForUpdate(ctx context.Context, waybillID id.ID) (*waybill.Waybill, error) {
	return r.getHeader(ctx, waybillID, "FOR UPDATE")
}

func (r *WaybillRepo) GetLines(ctx context.Context, waybillID id.ID) ([]waybill.Line, error) {
	sql, args, err := r.builder().
		Select(r.lineCols...).
		From(lineTable).
		Where(squirrel.Eq{"waybill_id": waybillID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := make([]waybill.Line, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get waybill lines: %w", err)
	}
	return lines, nil
}

func (r *WaybillRepo) InsertLine(ctx context.Context, line *waybill.Line) error {
	return r.exec(ctx, r.builder().Insert(lineTable).SetMap(postgres.StructToMap(line)), "insert waybill line")
}

func (r *WaybillRepo) DeleteLine(ctx context.Context, waybillID, lineID id.ID) error {
	sql, args, err := r.deleteLineQuery(waybillID, lineID).ToSql()
	if err != nil {
		return fmt.Errorf("build line delete: %w", err)
	}
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete waybill line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("waybill line", lineID.String())
	}
	return nil
}

func (r *WaybillRepo) deleteLineQuery(waybillID, lineID id.ID) squirrel.DeleteBuilder {
	return r.builder().
		Delete(lineTable).
		Where(squirrel.Eq{"id": lineID, "waybill_id": waybillID})
}

// MarkCommitted is the single conditional write that makes commit idempotent:
// of several concurrent callers exactly one sees a row affected.
func (r *WaybillRepo) MarkCommitted(ctx context.Context, waybillID, committedBy id.ID, at time.Time) (bool, error) {
	sql, args, err := r.markCommittedQuery(waybillID, committedBy, at).ToSql()
	if err != nil {
		return false, fmt.Errorf("build commit flag update: %w", err)
	}
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("mark waybill committed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *WaybillRepo) markCommittedQuery(waybillID, committedBy id.ID, at time.Time) squirrel.UpdateBuilder {
	return r.builder().
		Update(waybillTable).
		Set("is_pending", false).
		Set("committed_at", at).
		Set("committed_by", committedBy).
		Set("updated_at", at).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": waybillID, "is_pending": true})
}

// List returns headers newest first. UUIDv7 ids sort by creation time.
func (r *WaybillRepo) List(ctx context.Context, filter waybill.ListFilter) (domain.ListResult[*waybill.Waybill], error) {
	page := filter.ListFilter.Normalize()
	result := domain.ListResult[*waybill.Waybill]{
		Items:  make([]*waybill.Waybill, 0),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	q := r.listQuery(filter)
	querier := r.txManager.GetQuerier(ctx)

	countSQL, countArgs, err := r.builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count waybills: %w", err)
	}

	sql, args, err := q.OrderBy("id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list waybills: %w", err)
	}
	for _, w := range result.Items {
		w.Lines = make([]waybill.Line, 0)
	}
	return result, nil
}

func (r *WaybillRepo) listQuery(f waybill.ListFilter) squirrel.SelectBuilder {
	q := r.builder().Select(r.headerCols...).From(waybillTable)

	if f.Pending != nil {
		q = q.Where(squirrel.Eq{"is_pending": *f.Pending})
	}
	if f.WaybillType != nil {
		q = q.Where(squirrel.Eq{"waybill_type": *f.WaybillType})
	}
	if f.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *f.CustomerID})
	}
	if f.AuthorID != nil {
		q = q.Where(squirrel.Eq{"author_id": *f.AuthorID})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *f.DateTo})
	}
	if f.Search != "" {
		q = q.Where(squirrel.ILike{"note": "%" + f.Search + "%"})
	}
	return q
}
