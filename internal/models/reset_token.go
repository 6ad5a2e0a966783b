package models

import (
	"time"
)

// ResetToken is a single-use password reset token. At most one live token
// exists per account: issuance deletes all prior rows before inserting.
type ResetToken struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	TokenHash string    `json:"-"` // Never expose token hash
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the token is past its expiry instant.
func (t *ResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
