package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluggedhq/login-server/internal/models"
	pkgauth "github.com/pluggedhq/login-server/pkg/auth"
	pkglogger "github.com/pluggedhq/login-server/pkg/logger"
)

func newResetService(tokens ResetTokenRepository, accounts AccountRepository, mailer EmailSender) *ResetService {
	logger := slog.Default()
	return NewResetService(tokens, accounts, mailer, 15*time.Minute, logger, pkglogger.NewAuditLogger(logger))
}

func TestResetService_Request_Success(t *testing.T) {
	verified := NewTestAccount("account123", "jane@example.com", "Jane Doe", true)

	deleteCalled := false
	createCalled := false
	var sentRedirect string

	mockAccounts := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return verified, nil
		},
	}
	mockTokens := &MockResetTokenRepository{
		DeleteByAccountIDFunc: func(ctx context.Context, accountID string) error {
			// Prior tokens must be cleared before the new insert
			assert.False(t, createCalled)
			deleteCalled = true
			return nil
		},
		CreateFunc: func(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error) {
			assert.True(t, deleteCalled)
			createCalled = true
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)
			return &models.ResetToken{AccountID: accountID, TokenHash: tokenHash, ExpiresAt: expiresAt}, nil
		},
	}
	mockMailer := &MockEmailSender{
		SendPasswordResetEmailFunc: func(ctx context.Context, email, redirectURL, accountID, secret string) error {
			sentRedirect = redirectURL
			return nil
		},
	}

	svc := newResetService(mockTokens, mockAccounts, mockMailer)

	require.NoError(t, svc.Request(context.Background(), "jane@example.com", "https://app.example.com/reset", "203.0.113.10"))
	assert.True(t, createCalled)
	assert.Equal(t, "https://app.example.com/reset", sentRedirect)
}

func TestResetService_Request_UnknownAccount(t *testing.T) {
	svc := newResetService(&MockResetTokenRepository{}, &MockAccountRepository{}, &MockEmailSender{})

	err := svc.Request(context.Background(), "nobody@example.com", "https://app.example.com/reset", "203.0.113.10")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResetService_Request_BlockedWhenUnverified(t *testing.T) {
	unverified := NewTestAccount("account123", "jane@example.com", "Jane Doe", false)

	mockAccounts := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return unverified, nil
		},
	}

	svc := newResetService(&MockResetTokenRepository{}, mockAccounts, &MockEmailSender{})

	err := svc.Request(context.Background(), "jane@example.com", "https://app.example.com/reset", "203.0.113.10")
	assert.ErrorIs(t, err, models.ErrUnverified)
}

func TestResetService_Request_TwiceLeavesOneLiveToken(t *testing.T) {
	verified := NewTestAccount("account123", "jane@example.com", "Jane Doe", true)

	// In-memory token store: delete-then-insert must supersede
	live := map[string]*models.ResetToken{}

	mockAccounts := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return verified, nil
		},
	}
	mockTokens := &MockResetTokenRepository{
		DeleteByAccountIDFunc: func(ctx context.Context, accountID string) error {
			delete(live, accountID)
			return nil
		},
		CreateFunc: func(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error) {
			token := &models.ResetToken{AccountID: accountID, TokenHash: tokenHash, ExpiresAt: expiresAt}
			live[accountID] = token
			return token, nil
		},
	}

	var lastSecret string
	mockMailer := &MockEmailSender{
		SendPasswordResetEmailFunc: func(ctx context.Context, email, redirectURL, accountID, secret string) error {
			lastSecret = secret
			return nil
		},
	}

	svc := newResetService(mockTokens, mockAccounts, mockMailer)

	require.NoError(t, svc.Request(context.Background(), "jane@example.com", "https://app.example.com/reset", "203.0.113.10"))
	require.NoError(t, svc.Request(context.Background(), "jane@example.com", "https://app.example.com/reset", "203.0.113.10"))

	require.Len(t, live, 1)
	// The surviving row belongs to the second issuance
	assert.NoError(t, pkgauth.CompareTokenSecret(live["account123"].TokenHash, lastSecret))
}

func TestResetService_Redeem_Success(t *testing.T) {
	secret := pkgauth.NewTokenSecret("account123")
	tokenHash, err := pkgauth.HashTokenSecret(secret)
	require.NoError(t, err)

	var newHash string
	tokensDeleted := false

	mockTokens := &MockResetTokenRepository{
		GetLatestByAccountIDFunc: func(ctx context.Context, accountID string) (*models.ResetToken, error) {
			return &models.ResetToken{
				AccountID: accountID,
				TokenHash: tokenHash,
				ExpiresAt: time.Now().Add(10 * time.Minute),
			}, nil
		},
		DeleteByAccountIDFunc: func(ctx context.Context, accountID string) error {
			tokensDeleted = true
			return nil
		},
	}
	mockAccounts := &MockAccountRepository{
		UpdatePasswordHashFunc: func(ctx context.Context, id, passwordHash string) error {
			newHash = passwordHash
			return nil
		},
	}

	svc := newResetService(mockTokens, mockAccounts, &MockEmailSender{})

	require.NoError(t, svc.Redeem(context.Background(), "account123", secret, "fresh-password-1", "203.0.113.10"))
	assert.True(t, tokensDeleted)
	assert.NoError(t, pkgauth.ComparePassword(newHash, "fresh-password-1"))
}

func TestResetService_Redeem_ExpiredKeepsAccount(t *testing.T) {
	secret := pkgauth.NewTokenSecret("account123")
	tokenHash, err := pkgauth.HashTokenSecret(secret)
	require.NoError(t, err)

	tokensDeleted := false

	mockTokens := &MockResetTokenRepository{
		GetLatestByAccountIDFunc: func(ctx context.Context, accountID string) (*models.ResetToken, error) {
			return &models.ResetToken{
				AccountID: accountID,
				TokenHash: tokenHash,
				CreatedAt: time.Now().Add(-30 * time.Minute),
				ExpiresAt: time.Now().Add(-15 * time.Minute),
			}, nil
		},
		DeleteByAccountIDFunc: func(ctx context.Context, accountID string) error {
			tokensDeleted = true
			return nil
		},
	}
	mockAccounts := &MockAccountRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			t.Fatal("reset expiry must never delete the account")
			return nil
		},
		UpdatePasswordHashFunc: func(ctx context.Context, id, passwordHash string) error {
			t.Fatal("expired redemption must not change the password")
			return nil
		},
	}

	svc := newResetService(mockTokens, mockAccounts, &MockEmailSender{})

	err = svc.Redeem(context.Background(), "account123", secret, "fresh-password-1", "203.0.113.10")
	assert.ErrorIs(t, err, models.ErrTokenExpired)
	assert.True(t, tokensDeleted)
}

func TestResetService_Redeem_SecretMismatch(t *testing.T) {
	tokenHash, err := pkgauth.HashTokenSecret(pkgauth.NewTokenSecret("account123"))
	require.NoError(t, err)

	mockTokens := &MockResetTokenRepository{
		GetLatestByAccountIDFunc: func(ctx context.Context, accountID string) (*models.ResetToken, error) {
			return &models.ResetToken{
				AccountID: accountID,
				TokenHash: tokenHash,
				ExpiresAt: time.Now().Add(10 * time.Minute),
			}, nil
		},
	}

	svc := newResetService(mockTokens, &MockAccountRepository{}, &MockEmailSender{})

	err = svc.Redeem(context.Background(), "account123", pkgauth.NewTokenSecret("account123"), "fresh-password-1", "203.0.113.10")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestResetService_Redeem_NoToken(t *testing.T) {
	svc := newResetService(&MockResetTokenRepository{}, &MockAccountRepository{}, &MockEmailSender{})

	err := svc.Redeem(context.Background(), "account123", "whatever", "fresh-password-1", "203.0.113.10")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResetService_Redeem_ShortPasswordRejectedBeforeLookup(t *testing.T) {
	mockTokens := &MockResetTokenRepository{
		GetLatestByAccountIDFunc: func(ctx context.Context, accountID string) (*models.ResetToken, error) {
			t.Fatal("token lookup should not happen for an invalid new password")
			return nil, nil
		},
	}

	svc := newResetService(mockTokens, &MockAccountRepository{}, &MockEmailSender{})

	err := svc.Redeem(context.Background(), "account123", "whatever", "short", "203.0.113.10")

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "newPassword", verr.Field)
}
