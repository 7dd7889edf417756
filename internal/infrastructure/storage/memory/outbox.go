package memory

import (
	"context"
	"fmt"

	"backoffice/internal/core/outbox"
)

var _ outbox.Publisher = (*Publisher)(nil)

// Publisher appends events to the in-memory outbox.
type Publisher struct{ s *Store }

func (s *Store) Outbox() *Publisher { return &Publisher{s: s} }

// Publish must run inside RunInTransaction, like the PostgreSQL outbox.
func (p *Publisher) Publish(ctx context.Context, event outbox.DomainEvent) error {
	if !p.s.inTx(ctx) {
		return fmt.Errorf("outbox publish requires transaction context")
	}
	p.s.events = append(p.s.events, event)
	return nil
}

// Events returns a copy of every published event in order.
func (p *Publisher) Events() []outbox.DomainEvent {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return append([]outbox.DomainEvent(nil), p.s.events...)
}
