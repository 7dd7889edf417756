package waybill

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/tx"
	"backoffice/internal/core/types"
	"backoffice/internal/domain"
	"backoffice/internal/domain/catalogs/offer"
	"backoffice/internal/domain/catalogs/user"
	"backoffice/pkg/logger"
)

// OfferReader loads offers for line snapshots.
type OfferReader interface {
	GetByID(ctx context.Context, offerID id.ID) (*offer.Offer, error)
}

// CustomerReader loads the waybill customer for price selection.
type CustomerReader interface {
	GetByID(ctx context.Context, userID id.ID) (*user.User, error)
}

// ServiceConfig tunes the waybill lifecycle.
type ServiceConfig struct {
	// AllowLinesOnCommitted restores the legacy behaviour of accepting lines
	// on committed waybills. Such lines never move stock.
	AllowLinesOnCommitted bool
}

// Service manages the waybill lifecycle up to (not including) commit.
type Service struct {
	repo      Repository
	offers    OfferReader
	customers CustomerReader
	txManager tx.ReadOnlyManager
	cfg       ServiceConfig
}

// NewService creates a new waybill service.
// offers must read the store directly: line prices are snapshotted inside
// the AddLine transaction and a cached copy may lag behind an offer update.
func NewService(repo Repository, offers OfferReader, customers CustomerReader, txManager tx.ReadOnlyManager, cfg ServiceConfig) *Service {
	return &Service{
		repo:      repo,
		offers:    offers,
		customers: customers,
		txManager: txManager,
		cfg:       cfg,
	}
}

// AddLineInput describes a line to append.
// Nil snapshot fields are filled from the offer; a nil price uses the
// customer's price list.
type AddLineInput struct {
	OfferID            id.ID
	Quantity           int64
	PriceRub           *types.Money
	Brand              *string
	ManufacturerNumber *string
}

// Create persists a new pending waybill with no lines.
func (s *Service) Create(ctx context.Context, w *Waybill) error {
	_, err := s.CreateWithLines(ctx, w, nil)
	return err
}

// CreateWithLines persists a new waybill and its lines in one unit of work.
func (s *Service) CreateWithLines(ctx context.Context, w *Waybill, lines []AddLineInput) (*Waybill, error) {
	w.Pending = true
	w.CommittedAt, w.CommittedBy = nil, nil
	w.Lines = make([]Line, 0, len(lines))
	if err := w.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.customers.GetByID(ctx, w.CustomerID)
		if err != nil {
			return err
		}
		if err := s.repo.Create(ctx, w); err != nil {
			return fmt.Errorf("create waybill: %w", err)
		}
		for i, in := range lines {
			line, err := s.addLine(ctx, w, customer, in, i+1)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			w.Lines = append(w.Lines, *line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "waybill created",
		"waybill_id", w.ID,
		"waybill_type", w.WaybillType,
		"lines", len(w.Lines),
	)
	return w, nil
}

// GetByID loads the waybill with all its lines.
// Header and lines come from one read-only snapshot.
func (s *Service) GetByID(ctx context.Context, waybillID id.ID) (*Waybill, error) {
	var w *Waybill
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		w, err = s.repo.GetByID(ctx, waybillID)
		if err != nil {
			return err
		}
		lines, err := s.repo.GetLines(ctx, waybillID)
		if err != nil {
			return fmt.Errorf("load lines: %w", err)
		}
		w.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// AddLine appends one line to a pending waybill in its own unit of work.
// Committed waybills reject new lines with an InvalidState error.
func (s *Service) AddLine(ctx context.Context, waybillID id.ID, in AddLineInput) (*Line, error) {
	var line *Line
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		w, err := s.repo.GetForUpdate(ctx, waybillID)
		if err != nil {
			return err
		}
		existing, err := s.repo.GetLines(ctx, waybillID)
		if err != nil {
			return fmt.Errorf("load lines: %w", err)
		}
		customer, err := s.customers.GetByID(ctx, w.CustomerID)
		if err != nil {
			return err
		}
		line, err = s.addLine(ctx, w, customer, in, nextLineNo(existing))
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "waybill line added",
		"waybill_id", waybillID,
		"line_no", line.LineNo,
		"offer_id", line.OfferID,
		"quantity", line.Quantity,
	)
	return line, nil
}

func (s *Service) addLine(ctx context.Context, w *Waybill, customer *user.User, in AddLineInput, lineNo int) (*Line, error) {
	if !s.cfg.AllowLinesOnCommitted {
		if err := w.CanModify(); err != nil {
			return nil, err
		}
	}
	if in.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", in.Quantity)
	}
	if in.PriceRub != nil && in.PriceRub.IsNegative() {
		return nil, apperror.NewValidation("price cannot be negative").
			WithDetail("field", "priceRub")
	}

	o, err := s.offers.GetByID(ctx, in.OfferID)
	if err != nil {
		return nil, err
	}

	line := &Line{
		ID:                 id.New(),
		WaybillID:          w.ID,
		LineNo:             lineNo,
		OfferID:            o.ID,
		Quantity:           in.Quantity,
		Brand:              o.Brand,
		ManufacturerNumber: o.ManufacturerNumber,
		PriceRub:           o.PriceFor(customer.CustomerType),
		CreatedAt:          time.Now().UTC(),
	}
	if in.Brand != nil {
		line.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.ManufacturerNumber != nil {
		line.ManufacturerNumber = strings.TrimSpace(*in.ManufacturerNumber)
	}
	if in.PriceRub != nil {
		line.PriceRub = *in.PriceRub
	}

	if err := s.repo.InsertLine(ctx, line); err != nil {
		return nil, fmt.Errorf("insert line: %w", err)
	}
	return line, nil
}

// RemoveLine deletes one line of a pending waybill.
// Committed waybills reject the removal with an InvalidState error,
// regardless of AllowLinesOnCommitted.
func (s *Service) RemoveLine(ctx context.Context, waybillID, lineID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		w, err := s.repo.GetForUpdate(ctx, waybillID)
		if err != nil {
			return err
		}
		if err := w.CanModify(); err != nil {
			return err
		}
		return s.repo.DeleteLine(ctx, waybillID, lineID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "waybill line removed", "waybill_id", waybillID, "line_id", lineID)
	return nil
}

func nextLineNo(lines []Line) int {
	last := 0
	for _, l := range lines {
		if l.LineNo > last {
			last = l.LineNo
		}
	}
	return last + 1
}

// List retrieves waybills with filtering, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Waybill], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}
