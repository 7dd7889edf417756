package dto

import (
	"time"

	"backoffice/internal/core/entity"
	"backoffice/internal/domain/catalogs/user"
)

// CreateUserRequest registers a customer account.
type CreateUserRequest struct {
	Email        string `json:"email" binding:"required"`
	Name         string `json:"name"`
	CustomerType string `json:"customerType"`
}

// ToEntity converts request to domain entity.
func (r *CreateUserRequest) ToEntity() *user.User {
	return user.NewUser(r.Email, r.Name, entity.CustomerType(r.CustomerType))
}

// UserResponse is the API view of a user, balances in minor units.
type UserResponse struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	CustomerType string           `json:"customerType"`
	Balances     map[string]int64 `json:"balances"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// FromUser maps a domain user.
func FromUser(u *user.User) UserResponse {
	balances := make(map[string]int64, len(entity.Currencies))
	for _, c := range entity.Currencies {
		balances[string(c)] = u.Balance(c)
	}
	return UserResponse{
		ID:           u.ID.String(),
		Email:        u.Email,
		Name:         u.Name,
		CustomerType: string(u.CustomerType),
		Balances:     balances,
		CreatedAt:    u.CreatedAt,
	}
}
