package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyVerifier checks integration API keys against a bcrypt hash, so the
// plain key never appears in configuration.
type APIKeyVerifier struct {
	hash []byte
}

// NewAPIKeyVerifier creates a verifier. An empty hash disables integration access.
func NewAPIKeyVerifier(bcryptHash string) *APIKeyVerifier {
	return &APIKeyVerifier{hash: []byte(bcryptHash)}
}

// Verify returns nil when key matches the configured hash.
func (v *APIKeyVerifier) Verify(key string) error {
	if len(v.hash) == 0 {
		return errors.New("integration access is not configured")
	}
	if key == "" {
		return errors.New("api key is missing")
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(key))
}

// HashAPIKey produces the value for INTEGRATION_API_KEY_HASH.
func HashAPIKey(key string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
