package stock

import (
	"context"
	"fmt"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/pkg/logger"
)

// Service appends to and reads from the stock ledger.
// Writes run inside the caller's transaction (the commit engine).
type Service struct {
	repo Repository
}

// NewService creates a new stock ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordMovements appends the movements of one committed waybill.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if m.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.WaybillID) || id.IsNil(m.OfferID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: waybill and offer are required", i))
		}
		if !m.Direction.Valid() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: unknown waybill type", i))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Debug(ctx, "recorded stock movements",
		"count", len(movements),
		"waybill_id", movements[0].WaybillID,
	)
	return nil
}

// GetByWaybill lists the movements a waybill produced.
func (s *Service) GetByWaybill(ctx context.Context, waybillID id.ID) ([]entity.StockMovement, error) {
	return s.repo.GetMovementsByWaybill(ctx, waybillID)
}

// GetHistory lists movements of an offer.
func (s *Service) GetHistory(ctx context.Context, offerID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.repo.GetMovementHistory(ctx, offerID, filter)
}

// GetTurnover generates a turnover report for the period.
func (s *Service) GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	if !filter.ToDate.IsZero() && filter.ToDate.Before(filter.FromDate) {
		return Turnover{}, apperror.NewValidation("period end is before period start")
	}
	return s.repo.GetTurnover(ctx, filter)
}
