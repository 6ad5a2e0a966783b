package models

import (
	"time"
)

// VerificationToken is a single-use email verification token. The plaintext
// secret is emailed to the account holder; only its bcrypt hash is stored.
type VerificationToken struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	TokenHash string    `json:"-"` // Never expose token hash
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the token is past its expiry instant.
func (t *VerificationToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
