package user

import (
	"context"
	"fmt"

	"backoffice/internal/core/id"
	"backoffice/internal/core/tx"
	"backoffice/pkg/logger"
)

// Service manages user records. Authentication lives outside this service.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create registers a user with zero balances.
func (s *Service) Create(ctx context.Context, u *User) error {
	u.BalanceRUB, u.BalanceUSD, u.BalanceEUR, u.BalanceTRY = 0, 0, 0, 0
	if err := u.Validate(ctx); err != nil {
		return err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "user created", "user_id", u.ID, "customer_type", u.CustomerType)
	return nil
}

func (s *Service) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}
