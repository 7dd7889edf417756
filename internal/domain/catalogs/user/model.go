// Package user provides the back-office view of a customer account:
// identity reference, price list and per-currency balances.
package user

import (
	"context"
	"strings"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
)

// User is a customer account with four balances in minor units.
// Balances change only through the balance adjustment service.
type User struct {
	entity.BaseCatalog

	Email        string              `db:"email" json:"email"`
	Name         string              `db:"name" json:"name"`
	CustomerType entity.CustomerType `db:"customer_type" json:"customerType"`

	BalanceRUB int64 `db:"balance_rub" json:"balanceRub"`
	BalanceUSD int64 `db:"balance_usd" json:"balanceUsd"`
	BalanceEUR int64 `db:"balance_eur" json:"balanceEur"`
	BalanceTRY int64 `db:"balance_try" json:"balanceTry"`
}

// NewUser creates a user with zero balances.
func NewUser(email, name string, ct entity.CustomerType) *User {
	if ct == "" {
		ct = entity.CustomerRetail
	}
	return &User{
		BaseCatalog:  entity.NewBaseCatalog(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		CustomerType: ct,
	}
}

// Validate implements entity.Validatable.
func (u *User) Validate(ctx context.Context) error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return apperror.NewValidation("valid email is required").
			WithDetail("field", "email")
	}
	if !u.CustomerType.Valid() {
		return apperror.NewValidation("invalid customer type").
			WithDetail("field", "customerType").
			WithDetail("value", string(u.CustomerType))
	}
	return nil
}

// Balance returns the balance held in currency c.
func (u *User) Balance(c entity.Currency) int64 {
	switch c {
	case entity.CurrencyUSD:
		return u.BalanceUSD
	case entity.CurrencyEUR:
		return u.BalanceEUR
	case entity.CurrencyTRY:
		return u.BalanceTRY
	default:
		return u.BalanceRUB
	}
}

// SetBalance replaces the balance held in currency c. Storage layers use it.
func (u *User) SetBalance(c entity.Currency, v int64) {
	switch c {
	case entity.CurrencyUSD:
		u.BalanceUSD = v
	case entity.CurrencyEUR:
		u.BalanceEUR = v
	case entity.CurrencyTRY:
		u.BalanceTRY = v
	default:
		u.BalanceRUB = v
	}
}
