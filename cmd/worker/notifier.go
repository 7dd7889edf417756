package main

import (
	"context"
	"encoding/json"
	"fmt"

	"backoffice/internal/core/outbox"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/pkg/logger"
)

// Notifier hands committed waybills to the document printer and balance
// changes to customer mail. Both consumers read the log stream.
type Notifier struct{}

// NewNotifier creates the outbox handler used by the worker.
func NewNotifier() *Notifier {
	return &Notifier{}
}

var _ postgres.OutboxHandler = (*Notifier)(nil)

// Handle decodes msg by event type. Unknown types fail so they end up in the DLQ.
func (n *Notifier) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	switch msg.EventType {
	case outbox.EventWaybillCommitted:
		var ev outbox.WaybillCommitted
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", msg.EventType, err)
		}
		logger.Info(ctx, "waybill ready for printing",
			"waybill_id", ev.WaybillID,
			"waybill_type", ev.WaybillType,
			"customer_id", ev.CustomerID,
			"lines", len(ev.Lines),
		)
		return nil

	case outbox.EventUserBalanceAdjusted:
		var ev outbox.UserBalanceAdjusted
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", msg.EventType, err)
		}
		logger.Info(ctx, "balance confirmation queued",
			"user_id", ev.UserID,
			"currency", ev.Currency,
			"delta", ev.Delta,
			"balance_after", ev.BalanceAfter,
			"reason", ev.Reason,
		)
		return nil
	}
	return fmt.Errorf("unknown outbox event type %q", msg.EventType)
}
