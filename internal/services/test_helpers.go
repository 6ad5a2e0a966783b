package services

import (
	"context"
	"time"

	"github.com/pluggedhq/login-server/internal/models"
)

// MockAccountRepository implements AccountRepository for testing
type MockAccountRepository struct {
	CreateFunc             func(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByIDFunc            func(ctx context.Context, id string) (*models.Account, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*models.Account, error)
	SetVerifiedFunc        func(ctx context.Context, id string) error
	UpdatePasswordHashFunc func(ctx context.Context, id, passwordHash string) error
	DeleteFunc             func(ctx context.Context, id string) error
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) SetVerified(ctx context.Context, id string) error {
	if m.SetVerifiedFunc != nil {
		return m.SetVerifiedFunc(ctx, id)
	}
	return nil
}

func (m *MockAccountRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordHashFunc != nil {
		return m.UpdatePasswordHashFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockVerificationTokenRepository implements VerificationTokenRepository for testing
type MockVerificationTokenRepository struct {
	CreateFunc               func(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.VerificationToken, error)
	GetLatestByAccountIDFunc func(ctx context.Context, accountID string) (*models.VerificationToken, error)
	DeleteByAccountIDFunc    func(ctx context.Context, accountID string) error
	PurgeExpiredFunc         func(ctx context.Context) (int64, int64, error)
}

func (m *MockVerificationTokenRepository) Create(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.VerificationToken, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, accountID, tokenHash, expiresAt)
	}
	return &models.VerificationToken{
		ID:        "token123",
		AccountID: accountID,
		TokenHash: tokenHash,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}, nil
}

func (m *MockVerificationTokenRepository) GetLatestByAccountID(ctx context.Context, accountID string) (*models.VerificationToken, error) {
	if m.GetLatestByAccountIDFunc != nil {
		return m.GetLatestByAccountIDFunc(ctx, accountID)
	}
	return nil, models.ErrNotFound
}

func (m *MockVerificationTokenRepository) DeleteByAccountID(ctx context.Context, accountID string) error {
	if m.DeleteByAccountIDFunc != nil {
		return m.DeleteByAccountIDFunc(ctx, accountID)
	}
	return nil
}

func (m *MockVerificationTokenRepository) PurgeExpired(ctx context.Context) (int64, int64, error) {
	if m.PurgeExpiredFunc != nil {
		return m.PurgeExpiredFunc(ctx)
	}
	return 0, 0, nil
}

// MockResetTokenRepository implements ResetTokenRepository for testing
type MockResetTokenRepository struct {
	CreateFunc               func(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error)
	GetLatestByAccountIDFunc func(ctx context.Context, accountID string) (*models.ResetToken, error)
	DeleteByAccountIDFunc    func(ctx context.Context, accountID string) error
	DeleteExpiredFunc        func(ctx context.Context) (int64, error)
}

func (m *MockResetTokenRepository) Create(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, accountID, tokenHash, expiresAt)
	}
	return &models.ResetToken{
		ID:        "token123",
		AccountID: accountID,
		TokenHash: tokenHash,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}, nil
}

func (m *MockResetTokenRepository) GetLatestByAccountID(ctx context.Context, accountID string) (*models.ResetToken, error) {
	if m.GetLatestByAccountIDFunc != nil {
		return m.GetLatestByAccountIDFunc(ctx, accountID)
	}
	return nil, models.ErrNotFound
}

func (m *MockResetTokenRepository) DeleteByAccountID(ctx context.Context, accountID string) error {
	if m.DeleteByAccountIDFunc != nil {
		return m.DeleteByAccountIDFunc(ctx, accountID)
	}
	return nil
}

func (m *MockResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	SendVerificationEmailFunc  func(ctx context.Context, email, accountID, secret string) error
	SendPasswordResetEmailFunc func(ctx context.Context, email, redirectURL, accountID, secret string) error
}

func (m *MockEmailSender) SendVerificationEmail(ctx context.Context, email, accountID, secret string) error {
	if m.SendVerificationEmailFunc != nil {
		return m.SendVerificationEmailFunc(ctx, email, accountID, secret)
	}
	return nil
}

func (m *MockEmailSender) SendPasswordResetEmail(ctx context.Context, email, redirectURL, accountID, secret string) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, redirectURL, accountID, secret)
	}
	return nil
}

// NewTestAccount builds an account with a fixed ID for mocks
func NewTestAccount(id, email, name string, verified bool) *models.Account {
	now := time.Now()
	return &models.Account{
		ID:        id,
		Email:     email,
		Name:      name,
		Verified:  verified,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
