package auth

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 12
	MinPasswordLen = 8
)

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// NewTokenSecret builds the plaintext secret embedded in emailed links:
// a random UUID concatenated with the owning account ID. At 72 bytes the
// result sits exactly at bcrypt's input limit.
func NewTokenSecret(accountID string) string {
	return uuid.NewString() + accountID
}

// HashTokenSecret hashes a token secret for storage. Plaintext secrets are
// never persisted.
func HashTokenSecret(secret string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(secret), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token secret: %w", err)
	}
	return string(hashedBytes), nil
}

// CompareTokenSecret checks a supplied secret against a stored hash.
func CompareTokenSecret(hashedSecret, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret))
}
