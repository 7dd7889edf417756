package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/id"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(userID string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: userID,
		Email:  "manager@example.com",
		Roles:  []string{"MANAGER"},
	}
}

func TestJWTValidator_Valid(t *testing.T) {
	v, err := NewJWTValidator(JWTConfig{Secret: testSecret, Issuer: "identity"})
	require.NoError(t, err)

	userID := id.New().String()
	user, err := v.ValidateToken(sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(userID)))
	require.NoError(t, err)
	assert.Equal(t, userID, user.UserID)
	assert.Equal(t, []string{"MANAGER"}, user.Roles)
	assert.False(t, user.IsAdmin)
}

func TestJWTValidator_Rejects(t *testing.T) {
	v, err := NewJWTValidator(JWTConfig{Secret: testSecret, Issuer: "identity"})
	require.NoError(t, err)
	userID := id.New().String()

	expired := validClaims(userID)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims(userID)
	wrongIssuer.Issuer = "someone-else"

	noExpiry := validClaims(userID)
	noExpiry.ExpiresAt = nil

	tests := map[string]string{
		"expired":       sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"wrong secret":  sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims(userID)),
		"wrong issuer":  sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer),
		"no expiry":     sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry),
		"not a user id": sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("admin")),
		"garbage":       "not-a-token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.ValidateToken(token)
			assert.Error(t, err)
		})
	}

	_, err = NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}

func TestAPIKeyVerifier(t *testing.T) {
	hash, err := HashAPIKey("print-service-key")
	require.NoError(t, err)

	v := NewAPIKeyVerifier(hash)
	assert.NoError(t, v.Verify("print-service-key"))
	assert.Error(t, v.Verify("wrong"))
	assert.Error(t, v.Verify(""))

	assert.Error(t, NewAPIKeyVerifier("").Verify("print-service-key"))
}
