package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.NoError(t, ComparePassword(hash, "correct horse battery"))
	assert.Error(t, ComparePassword(hash, "wrong password"))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestNewTokenSecret_EmbedsAccountID(t *testing.T) {
	accountID := "8b9cdd43-7c86-4f25-a6ca-b86a36b18e85"

	secret := NewTokenSecret(accountID)
	assert.True(t, strings.HasSuffix(secret, accountID))
	assert.Len(t, secret, 72) // uuid (36) + account id (36), bcrypt's max input

	// Two issuances must never collide
	assert.NotEqual(t, secret, NewTokenSecret(accountID))
}

func TestTokenSecret_HashAndCompare(t *testing.T) {
	secret := NewTokenSecret("8b9cdd43-7c86-4f25-a6ca-b86a36b18e85")

	hash, err := HashTokenSecret(secret)
	require.NoError(t, err)
	assert.NotContains(t, hash, secret)

	assert.NoError(t, CompareTokenSecret(hash, secret))
	assert.Error(t, CompareTokenSecret(hash, NewTokenSecret("8b9cdd43-7c86-4f25-a6ca-b86a36b18e85")))
}
