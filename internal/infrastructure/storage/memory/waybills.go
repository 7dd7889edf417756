package memory

import (
	"context"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/domain/documents/waybill"
)

var _ waybill.Repository = (*WaybillRepo)(nil)

// WaybillRepo stores waybill headers and lines.
type WaybillRepo struct{ s *Store }

func (s *Store) Waybills() *WaybillRepo { return &WaybillRepo{s: s} }

func (r *WaybillRepo) Create(ctx context.Context, w *waybill.Waybill) error {
	return r.s.do(ctx, func() error {
		if _, ok := r.s.users[w.CustomerID]; !ok {
			return apperror.NewNotFound("user", w.CustomerID.String())
		}
		if w.OrderID != nil {
			for _, existing := range r.s.waybills {
				if existing.OrderID != nil && *existing.OrderID == *w.OrderID {
					return apperror.NewDuplicate("waybill", "order_id", *w.OrderID)
				}
			}
		}
		header := *w
		header.Lines = nil
		r.s.waybills[w.ID] = header
		return nil
	})
}

func (r *WaybillRepo) GetByID(ctx context.Context, waybillID id.ID) (*waybill.Waybill, error) {
	var out *waybill.Waybill
	err := r.s.do(ctx, func() error {
		w, ok := r.s.waybills[waybillID]
		if !ok {
			return apperror.NewNotFound("waybill", waybillID.String())
		}
		w.Lines = []waybill.Line{}
		out = &w
		return nil
	})
	return out, err
}

// GetForUpdate is GetByID: transactions already hold the store lock.
func (r *WaybillRepo) GetForUpdate(ctx context.Context, waybillID id.ID) (*waybill.Waybill, error) {
	return r.GetByID(ctx, waybillID)
}

func (r *WaybillRepo) GetLines(ctx context.Context, waybillID id.ID) ([]waybill.Line, error) {
	var out []waybill.Line
	err := r.s.do(ctx, func() error {
		out = append([]waybill.Line{}, r.s.lines[waybillID]...)
		return nil
	})
	return out, err
}

func (r *WaybillRepo) InsertLine(ctx context.Context, line *waybill.Line) error {
	return r.s.do(ctx, func() error {
		if _, ok := r.s.waybills[line.WaybillID]; !ok {
			return apperror.NewNotFound("waybill", line.WaybillID.String())
		}
		if _, ok := r.s.offers[line.OfferID]; !ok {
			return apperror.NewNotFound("offer", line.OfferID.String())
		}
		for _, l := range r.s.lines[line.WaybillID] {
			if l.LineNo == line.LineNo {
				return apperror.NewDuplicate("waybill line", "line_no", "")
			}
		}
		r.s.lines[line.WaybillID] = append(r.s.lines[line.WaybillID], *line)
		return nil
	})
}

func (r *WaybillRepo) DeleteLine(ctx context.Context, waybillID, lineID id.ID) error {
	return r.s.do(ctx, func() error {
		lines := r.s.lines[waybillID]
		kept := make([]waybill.Line, 0, len(lines))
		for _, l := range lines {
			if l.ID != lineID {
				kept = append(kept, l)
			}
		}
		if len(kept) == len(lines) {
			return apperror.NewNotFound("waybill line", lineID.String())
		}
		r.s.lines[waybillID] = kept
		return nil
	})
}

func (r *WaybillRepo) MarkCommitted(ctx context.Context, waybillID, committedBy id.ID, at time.Time) (bool, error) {
	var flipped bool
	err := r.s.do(ctx, func() error {
		w, ok := r.s.waybills[waybillID]
		if !ok || !w.Pending {
			return nil
		}
		w.MarkCommitted(committedBy, at)
		r.s.waybills[waybillID] = w
		flipped = true
		return nil
	})
	return flipped, err
}

func (r *WaybillRepo) List(ctx context.Context, filter waybill.ListFilter) (domain.ListResult[*waybill.Waybill], error) {
	var out domain.ListResult[*waybill.Waybill]
	err := r.s.do(ctx, func() error {
		items := make([]*waybill.Waybill, 0)
		for _, w := range r.s.waybills {
			if !matchWaybill(w, filter) {
				continue
			}
			w := w
			w.Lines = []waybill.Line{}
			items = append(items, &w)
		}
		sortByIDDesc(items, func(w *waybill.Waybill) id.ID { return w.ID })
		out = paginate(items, filter.ListFilter)
		return nil
	})
	return out, err
}

func matchWaybill(w waybill.Waybill, f waybill.ListFilter) bool {
	switch {
	case f.Pending != nil && w.Pending != *f.Pending:
		return false
	case f.WaybillType != nil && w.WaybillType != *f.WaybillType:
		return false
	case f.CustomerID != nil && w.CustomerID != *f.CustomerID:
		return false
	case f.AuthorID != nil && w.AuthorID != *f.AuthorID:
		return false
	case f.DateFrom != nil && w.CreatedAt.Before(*f.DateFrom):
		return false
	case f.DateTo != nil && w.CreatedAt.After(*f.DateTo):
		return false
	case f.Search != "" && !contains(w.Note, f.Search):
		return false
	}
	return true
}
