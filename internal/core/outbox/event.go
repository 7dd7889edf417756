// Package outbox defines domain events written to the transactional outbox.
// Events are stored in the same transaction as the state change they describe
// and relayed to consumers (document printing, customer mail) by the worker.
package outbox

import (
	"context"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
)

const (
	AggregateWaybill = "Waybill"
	AggregateUser    = "User"

	EventWaybillCommitted    = "WaybillCommitted"
	EventUserBalanceAdjusted = "UserBalanceAdjusted"
)

// DomainEvent is an event to be stored in the outbox.
type DomainEvent struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// Publisher writes events to the outbox. Publish must run inside a transaction.
type Publisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

// WaybillCommitted is the payload of EventWaybillCommitted.
type WaybillCommitted struct {
	WaybillID   id.ID            `json:"waybillId"`
	WaybillType entity.Direction `json:"waybillType"`
	CustomerID  id.ID            `json:"customerId"`
	CommittedBy id.ID            `json:"committedBy"`
	Lines       []CommittedLine  `json:"lines"`
}

// CommittedLine is the stock effect of one line.
type CommittedLine struct {
	OfferID id.ID `json:"offerId"`
	Delta   int64 `json:"delta"`
}

// UserBalanceAdjusted is the payload of EventUserBalanceAdjusted.
type UserBalanceAdjusted struct {
	HistoryID    id.ID                `json:"historyId"`
	UserID       id.ID                `json:"userId"`
	Currency     entity.Currency      `json:"currency"`
	Delta        int64                `json:"delta"`
	BalanceAfter int64                `json:"balanceAfter"`
	Reason       entity.BalanceReason `json:"reason"`
}
