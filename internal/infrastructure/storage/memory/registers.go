package memory

import (
	"context"
	"fmt"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/domain/registers/balance"
	"backoffice/internal/domain/registers/stock"
)

var (
	_ stock.Repository   = (*StockRepo)(nil)
	_ balance.Repository = (*BalanceRepo)(nil)
)

// StockRepo is the in-memory stock ledger.
type StockRepo struct{ s *Store }

func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	return r.s.do(ctx, func() error {
		for _, m := range movements {
			for _, existing := range r.s.movements {
				if existing.WaybillID == m.WaybillID && existing.LineID == m.LineID {
					return fmt.Errorf("duplicate movement for waybill %s line %s", m.WaybillID, m.LineID)
				}
			}
		}
		r.s.movements = append(r.s.movements, movements...)
		return nil
	})
}

func (r *StockRepo) GetMovementsByWaybill(ctx context.Context, waybillID id.ID) ([]entity.StockMovement, error) {
	out := make([]entity.StockMovement, 0)
	err := r.s.do(ctx, func() error {
		for _, m := range r.s.movements {
			if m.WaybillID == waybillID {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, err
}

func (r *StockRepo) GetMovementHistory(ctx context.Context, offerID id.ID, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	out := make([]entity.StockMovement, 0)
	err := r.s.do(ctx, func() error {
		for i := len(r.s.movements) - 1; i >= 0; i-- {
			m := r.s.movements[i]
			switch {
			case m.OfferID != offerID:
				continue
			case filter.Direction != nil && m.Direction != *filter.Direction:
				continue
			case filter.FromDate != nil && m.CreatedAt.Before(*filter.FromDate):
				continue
			case filter.ToDate != nil && m.CreatedAt.After(*filter.ToDate):
				continue
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	page := paginate(out, domain.ListFilter{Limit: filter.Limit, Offset: filter.Offset})
	return page.Items, nil
}

func (r *StockRepo) GetTurnover(ctx context.Context, filter stock.TurnoverFilter) (stock.Turnover, error) {
	t := stock.Turnover{OfferID: filter.OfferID}
	err := r.s.do(ctx, func() error {
		for _, m := range r.s.movements {
			if filter.OfferID != nil && m.OfferID != *filter.OfferID {
				continue
			}
			signed := m.SignedQuantity()
			switch {
			case m.CreatedAt.Before(filter.FromDate):
				t.OpeningBalance += signed
			case !filter.ToDate.IsZero() && m.CreatedAt.After(filter.ToDate):
			case signed > 0:
				t.Incoming += signed
			default:
				t.Outgoing -= signed
			}
		}
		return nil
	})
	t.ClosingBalance = t.OpeningBalance + t.Incoming - t.Outgoing
	return t, err
}

// BalanceRepo is the in-memory balance history ledger.
type BalanceRepo struct{ s *Store }

func (s *Store) Balances() *BalanceRepo { return &BalanceRepo{s: s} }

func (r *BalanceRepo) Create(ctx context.Context, h *entity.BalanceHistory) error {
	return r.s.do(ctx, func() error {
		if _, ok := r.s.users[h.UserID]; !ok {
			return fmt.Errorf("balance history references unknown user %s", h.UserID)
		}
		if h.WaybillID != nil {
			if _, ok := r.s.waybills[*h.WaybillID]; !ok {
				return apperror.NewValidation("balance history references a missing record").
					WithDetail("waybill_id", h.WaybillID.String())
			}
		}
		r.s.history = append(r.s.history, *h)
		return nil
	})
}

func (r *BalanceRepo) ListByUser(ctx context.Context, userID id.ID, filter balance.HistoryFilter) (domain.ListResult[*entity.BalanceHistory], error) {
	var out domain.ListResult[*entity.BalanceHistory]
	err := r.s.do(ctx, func() error {
		items := make([]*entity.BalanceHistory, 0)
		for i := len(r.s.history) - 1; i >= 0; i-- {
			h := r.s.history[i]
			if h.UserID != userID {
				continue
			}
			if filter.Currency != nil && h.Currency != *filter.Currency {
				continue
			}
			items = append(items, &h)
		}
		out = paginate(items, filter.ListFilter)
		return nil
	})
	return out, err
}
