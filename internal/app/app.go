// Package app assembles domain services over a storage backend.
package app

import (
	"context"

	"backoffice/internal/core/outbox"
	"backoffice/internal/core/tx"
	"backoffice/internal/domain"
	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/catalogs/offer"
	"backoffice/internal/domain/catalogs/user"
	"backoffice/internal/domain/documents/waybill"
	"backoffice/internal/domain/posting"
	"backoffice/internal/domain/registers/balance"
	"backoffice/internal/domain/registers/stock"
	"backoffice/internal/infrastructure/storage/memory"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/internal/infrastructure/storage/postgres/catalog_repo"
	"backoffice/internal/infrastructure/storage/postgres/document_repo"
	"backoffice/internal/infrastructure/storage/postgres/register_repo"
)

// OfferStore is the full offer persistence surface.
type OfferStore interface {
	offer.Repository
	offer.StockStore
}

// UserStore is the full user persistence surface.
type UserStore interface {
	user.Repository
	user.BalanceStore
}

// Storage groups the repositories of one backend.
type Storage struct {
	TxManager tx.ReadOnlyManager
	Offers    OfferStore
	Users     UserStore
	Waybills  waybill.Repository
	Stock     stock.Repository
	Balances  balance.Repository
	Outbox    outbox.Publisher
	Audit     audit.Recorder
}

// MemoryStorage wires the in-memory backend.
func MemoryStorage(st *memory.Store) Storage {
	return Storage{
		TxManager: st,
		Offers:    st.Offers(),
		Users:     st.Users(),
		Waybills:  st.Waybills(),
		Stock:     st.Stock(),
		Balances:  st.Balances(),
		Outbox:    st.Outbox(),
		Audit:     st.Audit(),
	}
}

// PostgresStorage wires the PostgreSQL backend.
func PostgresStorage(txm *postgres.TxManager) (Storage, error) {
	auditService, err := postgres.NewAuditService(txm)
	if err != nil {
		return Storage{}, err
	}
	return Storage{
		TxManager: txm,
		Offers:    catalog_repo.NewOfferRepo(txm),
		Users:     catalog_repo.NewUserRepo(txm),
		Waybills:  document_repo.NewWaybillRepo(txm),
		Stock:     register_repo.NewStockRepo(txm),
		Balances:  register_repo.NewBalanceRepo(txm),
		Outbox:    postgres.NewOutboxPublisher(txm),
		Audit:     auditService,
	}, nil
}

// Config tunes service behaviour.
type Config struct {
	AllowLinesOnCommitted bool
}

// Services are the domain entry points served over HTTP.
type Services struct {
	Offers   *offer.Service
	Users    *user.Service
	Waybills *waybill.Service
	Engine   *posting.Engine
	Stock    *stock.Service
	Balances *balance.Service
}

// NewServices builds every service over s. cache may be nil.
func NewServices(s Storage, cache offer.Cache, cfg Config) *Services {
	offers := offer.NewService(s.Offers, s.TxManager, cache)
	users := user.NewService(s.Users, s.TxManager)
	ledger := stock.NewService(s.Stock)
	engine := posting.NewEngine(s.Waybills, s.Offers, ledger, s.TxManager, s.Outbox)

	// Committed quantities make cached offers stale.
	engine.Hooks().On(domain.AfterCommit, func(ctx context.Context, w *waybill.Waybill) error {
		offers.Invalidate(ctx, w.OfferIDs()...)
		return nil
	})

	return &Services{
		Offers: offers,
		Users:  users,
		Waybills: waybill.NewService(s.Waybills, s.Offers, users, s.TxManager, waybill.ServiceConfig{
			AllowLinesOnCommitted: cfg.AllowLinesOnCommitted,
		}),
		Engine:   engine,
		Stock:    ledger,
		Balances: balance.NewService(s.Users, s.Balances, s.TxManager, s.Outbox),
	}
}
