package services

import (
	"bytes"
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

func newAccountService(accounts AccountRepository, tokens VerificationTokenRepository, mailer EmailSender) *AccountService {
	logger := slog.Default()
	auditLogger := pkglogger.NewAuditLogger(logger)
	verification := NewVerificationService(tokens, accounts, mailer, 6*time.Hour, logger, auditLogger)
	return NewAccountService(accounts, verification, logger, auditLogger)
}

func TestAccountService_Signup_Success(t *testing.T) {
	var createdAccount *models.Account
	var sentSecret string

	mockAccounts := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, account *models.Account) (*models.Account, error) {
			account.ID = "account123"
			account.CreatedAt = time.Now()
			account.UpdatedAt = time.Now()
			createdAccount = account
			return account, nil
		},
	}
	mockTokens := &MockVerificationTokenRepository{}
	mockMailer := &MockEmailSender{
		SendVerificationEmailFunc: func(ctx context.Context, email, accountID, secret string) error {
			sentSecret = secret
			return nil
		},
	}

	svc := newAccountService(mockAccounts, mockTokens, mockMailer)

	account, err := svc.Signup(context.Background(), "Jane Doe", "jane@example.com", "hunter22hunter22", "1990-04-01", "203.0.113.10")
	require.NoError(t, err)
	require.NotNil(t, account)

	assert.False(t, createdAccount.Verified)
	assert.NotEqual(t, "hunter22hunter22", createdAccount.PasswordHash)
	assert.NoError(t, pkgauth.ComparePassword(createdAccount.PasswordHash, "hunter22hunter22"))
	assert.NotEmpty(t, sentSecret)
}

func TestAccountService_Signup_StoresTokenHashNotSecret(t *testing.T) {
	var storedHash string
	var sentSecret string

	mockAccounts := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, account *models.Account) (*models.Account, error) {
			account.ID = "account123"
			return account, nil
		},
	}
	mockTokens := &MockVerificationTokenRepository{
		CreateFunc: func(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.VerificationToken, error) {
			storedHash = tokenHash
			return &models.VerificationToken{AccountID: accountID, TokenHash: tokenHash, ExpiresAt: expiresAt}, nil
		},
	}
	mockMailer := &MockEmailSender{
		SendVerificationEmailFunc: func(ctx context.Context, email, accountID, secret string) error {
			sentSecret = secret
			return nil
		},
	}

	svc := newAccountService(mockAccounts, mockTokens, mockMailer)

	_, err := svc.Signup(context.Background(), "Jane Doe", "jane@example.com", "hunter22hunter22", "1990-04-01", "203.0.113.10")
	require.NoError(t, err)

	assert.NotEqual(t, sentSecret, storedHash)
	assert.NoError(t, pkgauth.CompareTokenSecret(storedHash, sentSecret))
}

func TestAccountService_Signup_ValidationErrors(t *testing.T) {
	svc := newAccountService(&MockAccountRepository{}, &MockVerificationTokenRepository{}, &MockEmailSender{})

	tests := []struct {
		name        string
		inputName   string
		email       string
		password    string
		dateOfBirth string
	}{
		{"empty name", "", "jane@example.com", "hunter22hunter22", "1990-04-01"},
		{"empty email", "Jane Doe", "", "hunter22hunter22", "1990-04-01"},
		{"empty password", "Jane Doe", "jane@example.com", "", "1990-04-01"},
		{"empty date of birth", "Jane Doe", "jane@example.com", "hunter22hunter22", ""},
		{"name with digits", "Jane D0e", "jane@example.com", "hunter22hunter22", "1990-04-01"},
		{"malformed email", "Jane Doe", "jane@@example", "hunter22hunter22", "1990-04-01"},
		{"short password", "Jane Doe", "jane@example.com", "short", "1990-04-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := svc.Signup(context.Background(), tt.inputName, tt.email, tt.password, tt.dateOfBirth, "203.0.113.10")
			assert.Nil(t, account)

			var verr *models.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestAccountService_Signup_DuplicateEmail(t *testing.T) {
	existing := NewTestAccount("account123", "jane@example.com", "Jane Doe", true)

	mockAccounts := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return existing, nil
		},
	}

	svc := newAccountService(mockAccounts, &MockVerificationTokenRepository{}, &MockEmailSender{})

	account, err := svc.Signup(context.Background(), "Jane Doe", "jane@example.com", "hunter22hunter22", "1990-04-01", "203.0.113.10")
	assert.Nil(t, account)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAccountService_Signup_MailFailureIsTransient(t *testing.T) {
	mockAccounts := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, account *models.Account) (*models.Account, error) {
			account.ID = "account123"
			return account, nil
		},
	}
	mockMailer := &MockEmailSender{
		SendVerificationEmailFunc: func(ctx context.Context, email, accountID, secret string) error {
			return assert.AnError
		},
	}

	svc := newAccountService(mockAccounts, &MockVerificationTokenRepository{}, mockMailer)

	account, err := svc.Signup(context.Background(), "Jane Doe", "jane@example.com", "hunter22hunter22", "1990-04-01", "203.0.113.10")
	assert.Nil(t, account)

	var terr *models.TransientError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "send mail", terr.Stage)
}

func TestAccountService_SignIn_EmptyCredentials(t *testing.T) {
	svc := newAccountService(&MockAccountRepository{}, &MockVerificationTokenRepository{}, &MockEmailSender{})

	for _, creds := range [][2]string{{"", "password"}, {"jane@example.com", ""}, {"   ", "   "}} {
		account, err := svc.SignIn(context.Background(), creds[0], creds[1], "203.0.113.10")
		assert.Nil(t, account)

		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestAccountService_SignIn_AccountNotFound(t *testing.T) {
	svc := newAccountService(&MockAccountRepository{}, &MockVerificationTokenRepository{}, &MockEmailSender{})

	account, err := svc.SignIn(context.Background(), "nobody@example.com", "password123", "203.0.113.10")
	assert.Nil(t, account)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAccountService_SignIn_BlockedWhenUnverified(t *testing.T) {
	hash, err := pkgauth.HashPassword("hunter22hunter22")
	require.NoError(t, err)

	unverified := NewTestAccount("account123", "jane@example.com", "Jane Doe", false)
	unverified.PasswordHash = hash

	mockAccounts := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return unverified, nil
		},
	}

	svc := newAccountService(mockAccounts, &MockVerificationTokenRepository{}, &MockEmailSender{})

	// Correct credentials still fail until the email is verified
	account, err := svc.SignIn(context.Background(), "jane@example.com", "hunter22hunter22", "203.0.113.10")
	assert.Nil(t, account)
	assert.ErrorIs(t, err, models.ErrUnverified)
}

func TestAccountService_SignIn_WrongPassword(t *testing.T) {
	hash, err := pkgauth.HashPassword("hunter22hunter22")
	require.NoError(t, err)

	verified := NewTestAccount("account123", "jane@example.com", "Jane Doe", true)
	verified.PasswordHash = hash

	mockAccounts := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return verified, nil
		},
	}

	svc := newAccountService(mockAccounts, &MockVerificationTokenRepository{}, &MockEmailSender{})

	account, err := svc.SignIn(context.Background(), "jane@example.com", "not-the-password", "203.0.113.10")
	assert.Nil(t, account)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAccountService_SignIn_Success(t *testing.T) {
	hash, err := pkgauth.HashPassword("hunter22hunter22")
	require.NoError(t, err)

	verified := NewTestAccount("account123", "jane@example.com", "Jane Doe", true)
	verified.PasswordHash = hash

	mockAccounts := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return verified, nil
		},
	}

	svc := newAccountService(mockAccounts, &MockVerificationTokenRepository{}, &MockEmailSender{})

	account, err := svc.SignIn(context.Background(), "jane@example.com", "hunter22hunter22", "203.0.113.10")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "account123", account.ID)
	assert.True(t, account.Verified)
}

func TestAccountService_SignIn_AuditCarriesClientIP(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	auditLogger := pkglogger.NewAuditLogger(logger)

	mockAccounts := &MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
	}
	verification := NewVerificationService(&MockVerificationTokenRepository{}, mockAccounts, &MockEmailSender{}, 6*time.Hour, logger, auditLogger)
	svc := NewAccountService(mockAccounts, verification, logger, auditLogger)

	_, err := svc.SignIn(context.Background(), "nobody@example.com", "password123", "203.0.113.77")
	require.Error(t, err)

	logged := buf.String()
	assert.Contains(t, logged, `"event_type":"signin_failed"`)
	assert.Contains(t, logged, `"ip_address":"203.0.113.77"`)
}
