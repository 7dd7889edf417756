// Package memory implements every repository and the transaction manager in
// process memory. It backs tests and the STORAGE=memory development mode.
//
// Transactions are serialised by a single mutex; a failed transaction restores
// the snapshot taken when it began, so readers never see partial writes.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/outbox"
	"backoffice/internal/core/tx"
	"backoffice/internal/domain"
	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/catalogs/offer"
	"backoffice/internal/domain/catalogs/user"
	"backoffice/internal/domain/documents/waybill"
)

var _ tx.ReadOnlyManager = (*Store)(nil)

// Store holds all tables.
type Store struct {
	mu sync.Mutex

	offers   map[id.ID]offer.Offer
	users    map[id.ID]user.User
	waybills map[id.ID]waybill.Waybill
	lines    map[id.ID][]waybill.Line

	// append-only tables
	movements []entity.StockMovement
	history   []entity.BalanceHistory
	events    []outbox.DomainEvent

	auditMu sync.Mutex
	audit   []audit.Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		offers:   make(map[id.ID]offer.Offer),
		users:    make(map[id.ID]user.User),
		waybills: make(map[id.ID]waybill.Waybill),
		lines:    make(map[id.ID][]waybill.Line),
	}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// RunInTransaction implements tx.Manager.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if r := recover(); r != nil {
			s.restore(snap)
			panic(r)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

// ReadOnly runs fn like a transaction. Writes are not prevented.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.RunInTransaction(ctx, fn)
}

// do runs fn under the store lock unless ctx already holds it.
func (s *Store) do(ctx context.Context, fn func() error) error {
	if s.inTx(ctx) {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type snapshot struct {
	offers    map[id.ID]offer.Offer
	users     map[id.ID]user.User
	waybills  map[id.ID]waybill.Waybill
	lines     map[id.ID][]waybill.Line
	movements int
	history   int
	events    int
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		offers:    make(map[id.ID]offer.Offer, len(s.offers)),
		users:     make(map[id.ID]user.User, len(s.users)),
		waybills:  make(map[id.ID]waybill.Waybill, len(s.waybills)),
		lines:     make(map[id.ID][]waybill.Line, len(s.lines)),
		movements: len(s.movements),
		history:   len(s.history),
		events:    len(s.events),
	}
	for k, v := range s.offers {
		snap.offers[k] = v
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.waybills {
		snap.waybills[k] = v
	}
	for k, v := range s.lines {
		snap.lines[k] = append([]waybill.Line(nil), v...)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.offers = snap.offers
	s.users = snap.users
	s.waybills = snap.waybills
	s.lines = snap.lines
	s.movements = s.movements[:snap.movements]
	s.history = s.history[:snap.history]
	s.events = s.events[:snap.events]
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func paginate[T any](items []T, f domain.ListFilter) domain.ListResult[T] {
	f = f.Normalize()
	total := len(items)
	start := min(f.Offset, total)
	end := min(start+f.Limit, total)
	return domain.ListResult[T]{
		Items:      items[start:end],
		TotalCount: int64(total),
		Limit:      f.Limit,
		Offset:     f.Offset,
	}
}

func sortByIDDesc[T any](items []T, key func(T) id.ID) {
	sort.SliceStable(items, func(i, j int) bool {
		return id.Less(key(items[j]), key(items[i]))
	})
}

// addInt64 reports false when cur+delta does not fit in an int64,
// matching the bigint range check of the SQL backend.
func addInt64(cur, delta int64) (int64, bool) {
	if delta > 0 && cur > math.MaxInt64-delta || delta < 0 && cur < math.MinInt64-delta {
		return cur, false
	}
	return cur + delta, true
}

func errOutOfRange() *apperror.AppError {
	return apperror.NewValidation("value out of range")
}
