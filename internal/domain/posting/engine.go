// Package posting provides the commit engine: it turns a pending waybill into
// stock changes and ledger rows in one atomic unit of work.
package posting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"backoffice/internal/core/id"
	"backoffice/internal/core/outbox"
	"backoffice/internal/core/tx"
	"backoffice/internal/domain"
	"backoffice/internal/domain/catalogs/offer"
	"backoffice/internal/domain/documents/waybill"
	"backoffice/internal/domain/registers/stock"
	"backoffice/pkg/logger"
)

var tracer = otel.Tracer("backoffice/posting")

// Engine commits waybills.
type Engine struct {
	waybills  waybill.Repository
	stock     offer.StockStore
	ledger    *stock.Service
	txManager tx.Manager
	publisher outbox.Publisher
	hooks     *domain.HookRegistry[*waybill.Waybill]
	now       func() time.Time
}

// NewEngine creates a commit engine. publisher may be nil.
func NewEngine(
	waybills waybill.Repository,
	stockStore offer.StockStore,
	ledger *stock.Service,
	txManager tx.Manager,
	publisher outbox.Publisher,
) *Engine {
	return &Engine{
		waybills:  waybills,
		stock:     stockStore,
		ledger:    ledger,
		txManager: txManager,
		publisher: publisher,
		hooks:     domain.NewHookRegistry[*waybill.Waybill](),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Hooks returns the registry of hooks run after a successful commit.
func (e *Engine) Hooks() *domain.HookRegistry[*waybill.Waybill] {
	return e.hooks
}

// Commit moves a pending waybill to committed.
//
// In one transaction it flips the pending flag, applies each line's signed
// quantity to its offer, appends one stock movement per line and queues a
// WaybillCommitted event. Any failure rolls everything back.
//
// Committing an already committed waybill changes nothing and returns the
// stored waybill. Losing a race against a concurrent commit behaves the same.
// Stock is allowed to go negative.
func (e *Engine) Commit(ctx context.Context, waybillID, actingUserID id.ID) (*waybill.Waybill, error) {
	ctx, span := tracer.Start(ctx, "posting.Commit", trace.WithAttributes(
		attribute.String("waybill.id", waybillID.String()),
	))
	defer span.End()

	var (
		result    *waybill.Waybill
		committed bool
	)
	at := e.now()

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		flipped, err := e.waybills.MarkCommitted(ctx, waybillID, actingUserID, at)
		if err != nil {
			return fmt.Errorf("mark committed: %w", err)
		}

		w, err := e.waybills.GetByID(ctx, waybillID)
		if err != nil {
			return err
		}
		lines, err := e.waybills.GetLines(ctx, waybillID)
		if err != nil {
			return fmt.Errorf("load lines: %w", err)
		}
		w.Lines = lines
		result = w

		if !flipped {
			return nil
		}

		if err := e.applyStock(ctx, w); err != nil {
			return err
		}
		if err := e.ledger.RecordMovements(ctx, w.GenerateMovements(actingUserID, at)); err != nil {
			return err
		}
		if err := e.publish(ctx, w, actingUserID); err != nil {
			return err
		}

		committed = true
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("waybill.noop", !committed))
	if !committed {
		logger.Info(ctx, "waybill already committed, nothing to do", "waybill_id", waybillID)
		return result, nil
	}

	if err := e.hooks.Run(ctx, domain.AfterCommit, result); err != nil {
		logger.Warn(ctx, "after-commit hook failed", "waybill_id", waybillID, "error", err)
	}
	logger.Info(ctx, "waybill committed",
		"waybill_id", waybillID,
		"waybill_type", result.WaybillType,
		"lines", len(result.Lines),
		"committed_by", actingUserID,
	)
	return result, nil
}

// applyStock adds each line's signed quantity to its offer. Offers are
// updated in id order so concurrent commits take row locks in the same order.
func (e *Engine) applyStock(ctx context.Context, w *waybill.Waybill) error {
	lines := make([]waybill.Line, len(w.Lines))
	copy(lines, w.Lines)
	sort.SliceStable(lines, func(i, j int) bool {
		return id.Less(lines[i].OfferID, lines[j].OfferID)
	})

	sign := w.WaybillType.Sign()
	for _, l := range lines {
		if _, err := e.stock.AddQuantity(ctx, l.OfferID, sign*l.Quantity); err != nil {
			return fmt.Errorf("apply line %d: %w", l.LineNo, err)
		}
	}
	return nil
}

func (e *Engine) publish(ctx context.Context, w *waybill.Waybill, actingUserID id.ID) error {
	if e.publisher == nil {
		return nil
	}
	sign := w.WaybillType.Sign()
	payload := outbox.WaybillCommitted{
		WaybillID:   w.ID,
		WaybillType: w.WaybillType,
		CustomerID:  w.CustomerID,
		CommittedBy: actingUserID,
		Lines:       make([]outbox.CommittedLine, 0, len(w.Lines)),
	}
	for _, l := range w.Lines {
		payload.Lines = append(payload.Lines, outbox.CommittedLine{OfferID: l.OfferID, Delta: sign * l.Quantity})
	}
	if err := e.publisher.Publish(ctx, outbox.DomainEvent{
		AggregateType: outbox.AggregateWaybill,
		AggregateID:   w.ID,
		EventType:     outbox.EventWaybillCommitted,
		Payload:       payload,
	}); err != nil {
		return fmt.Errorf("publish commit event: %w", err)
	}
	return nil
}
