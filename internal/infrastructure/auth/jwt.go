// Package auth validates the credentials presented to the API: bearer access
// tokens issued by the identity service and the integration API key.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	appctx "backoffice/internal/core/context"
	"backoffice/internal/core/id"
)

// JWTConfig holds JWT validation settings.
type JWTConfig struct {
	Secret string
	// Issuer is checked when non-empty
	Issuer string
}

// Claims are the access token claims this service reads.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string   `json:"uid"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
	IsAdmin bool     `json:"adm,omitempty"`
}

// JWTValidator validates HS256 access tokens. It never issues them.
type JWTValidator struct {
	config JWTConfig
	parser *jwt.Parser
}

// NewJWTValidator creates a validator. An empty secret is rejected.
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	if config.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	return &JWTValidator{config: config, parser: jwt.NewParser(opts...)}, nil
}

// ValidateToken parses the token and returns the acting user.
func (v *JWTValidator) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(v.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if _, err := id.Parse(userID); err != nil {
		return nil, fmt.Errorf("token subject is not a user id: %w", err)
	}

	return &appctx.UserContext{
		UserID:    userID,
		Email:     claims.Email,
		Roles:     claims.Roles,
		IsAdmin:   claims.IsAdmin,
		SessionID: claims.ID,
	}, nil
}
