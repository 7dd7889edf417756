package balance

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/outbox"
	"backoffice/internal/core/tx"
	"backoffice/internal/domain"
	"backoffice/internal/domain/catalogs/user"
	"backoffice/pkg/logger"
)

var tracer = otel.Tracer("backoffice/balance")

// Service adjusts user balances. Each adjustment is its own unit of work that
// changes the balance and appends exactly one history row.
type Service struct {
	balances  user.BalanceStore
	repo      Repository
	txManager tx.Manager
	publisher outbox.Publisher
}

// NewService creates the balance service. publisher may be nil.
func NewService(balances user.BalanceStore, repo Repository, txManager tx.Manager, publisher outbox.Publisher) *Service {
	return &Service{
		balances:  balances,
		repo:      repo,
		txManager: txManager,
		publisher: publisher,
	}
}

// AdjustInput describes one balance change.
type AdjustInput struct {
	UserID    id.ID
	Delta     int64
	Currency  entity.Currency
	Reason    entity.BalanceReason
	WaybillID *id.ID
	ActorID   *id.ID
}

func (in AdjustInput) validate() error {
	if id.IsNil(in.UserID) {
		return apperror.NewValidation("user is required").WithDetail("field", "userId")
	}
	if _, err := entity.ParseCurrency(string(in.Currency)); err != nil {
		return err
	}
	if _, err := entity.ParseBalanceReason(string(in.Reason)); err != nil {
		return err
	}
	return nil
}

// Adjust applies delta to the user's balance in the given currency and records
// the before and after values. Negative results are allowed; there is no overdraft check.
func (s *Service) Adjust(ctx context.Context, in AdjustInput) (*entity.BalanceHistory, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "balance.Adjust", trace.WithAttributes(
		attribute.String("user.id", in.UserID.String()),
		attribute.String("balance.currency", string(in.Currency)),
	))
	defer span.End()

	var record *entity.BalanceHistory
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// The store increments in place and holds the row lock until commit,
		// so before/after are exact even under concurrent adjustments.
		after, err := s.balances.AddBalance(ctx, in.UserID, in.Currency, in.Delta)
		if err != nil {
			return err
		}

		record = &entity.BalanceHistory{
			ID:            id.New(),
			UserID:        in.UserID,
			WaybillID:     in.WaybillID,
			Delta:         in.Delta,
			Currency:      in.Currency,
			BalanceBefore: after - in.Delta,
			BalanceAfter:  after,
			Reason:        in.Reason,
			ActorID:       in.ActorID,
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.repo.Create(ctx, record); err != nil {
			return fmt.Errorf("append balance history: %w", err)
		}

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, outbox.DomainEvent{
				AggregateType: outbox.AggregateUser,
				AggregateID:   in.UserID,
				EventType:     outbox.EventUserBalanceAdjusted,
				Payload: outbox.UserBalanceAdjusted{
					HistoryID:    record.ID,
					UserID:       in.UserID,
					Currency:     in.Currency,
					Delta:        in.Delta,
					BalanceAfter: after,
					Reason:       in.Reason,
				},
			}); err != nil {
				return fmt.Errorf("publish balance event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Info(ctx, "balance adjusted",
		"user_id", in.UserID,
		"currency", in.Currency,
		"delta", in.Delta,
		"balance_after", record.BalanceAfter,
		"reason", in.Reason,
	)
	return record, nil
}

// History lists a user's balance changes, newest first.
func (s *Service) History(ctx context.Context, userID id.ID, filter HistoryFilter) (domain.ListResult[*entity.BalanceHistory], error) {
	if filter.Currency != nil {
		if _, err := entity.ParseCurrency(string(*filter.Currency)); err != nil {
			return domain.ListResult[*entity.BalanceHistory]{}, err
		}
	}
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.ListByUser(ctx, userID, filter)
}
