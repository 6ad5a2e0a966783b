package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pluggedhq/login-server/internal/models"
	pkgauth "github.com/pluggedhq/login-server/pkg/auth"
	pkglogger "github.com/pluggedhq/login-server/pkg/logger"
)

// VerificationTokenRepository defines the interface for verification token
// store operations
type VerificationTokenRepository interface {
	Create(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.VerificationToken, error)
	GetLatestByAccountID(ctx context.Context, accountID string) (*models.VerificationToken, error)
	DeleteByAccountID(ctx context.Context, accountID string) error
	PurgeExpired(ctx context.Context) (int64, int64, error)
}

// VerificationService issues and redeems email verification tokens.
type VerificationService struct {
	tokens      VerificationTokenRepository
	accounts    AccountRepository
	mailer      EmailSender
	tokenExpiry time.Duration
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	tokens VerificationTokenRepository,
	accounts AccountRepository,
	mailer EmailSender,
	tokenExpiry time.Duration,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *VerificationService {
	return &VerificationService{
		tokens:      tokens,
		accounts:    accounts,
		mailer:      mailer,
		tokenExpiry: tokenExpiry,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Issue creates a verification token for the account and emails its
// plaintext secret. Only the hash is stored. A send failure leaves the token
// row in place; the user recovers by signing up again after expiry.
func (s *VerificationService) Issue(ctx context.Context, account *models.Account) error {
	secret := pkgauth.NewTokenSecret(account.ID)

	tokenHash, err := pkgauth.HashTokenSecret(secret)
	if err != nil {
		s.logger.Error("failed to hash verification secret", slog.Any("error", err))
		return &models.TransientError{
			Stage:   "hash token",
			Message: "An error occurred while hashing the verification data!",
			Err:     err,
		}
	}

	expiresAt := time.Now().Add(s.tokenExpiry)
	if _, err := s.tokens.Create(ctx, account.ID, tokenHash, expiresAt); err != nil {
		s.logger.Error("failed to save verification token",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return &models.TransientError{
			Stage:   "save token",
			Message: "Couldn't save the verification data!",
			Err:     err,
		}
	}

	if err := s.mailer.SendVerificationEmail(ctx, account.Email, account.ID, secret); err != nil {
		s.logger.Error("failed to send verification email",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return &models.TransientError{
			Stage:   "send mail",
			Message: "An error occurred while sending the verification mail!",
			Err:     err,
		}
	}

	s.logger.Info("verification email sent",
		slog.String("account_id", account.ID),
		slog.Time("expires_at", expiresAt))

	return nil
}

// Redeem completes email verification. An expired token discards both the
// token rows and the account itself; the signup must be repeated. On a hash
// match the account is marked verified and all token rows are removed.
func (s *VerificationService) Redeem(ctx context.Context, accountID, secret, clientIP string) error {
	token, err := s.tokens.GetLatestByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("verification token not found", slog.String("account_id", accountID))
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up verification token", slog.Any("error", err))
		return &models.TransientError{
			Stage:   "check token",
			Message: "An error occurred while checking for the verification record!",
			Err:     err,
		}
	}

	if token.IsExpired() {
		if err := s.tokens.DeleteByAccountID(ctx, accountID); err != nil {
			s.logger.Error("failed to clear expired verification tokens", slog.Any("error", err))
			return &models.TransientError{
				Stage:   "clear token",
				Message: "An error occurred while clearing the expired verification record!",
				Err:     err,
			}
		}

		// The verification window lapsed unredeemed; the unverified
		// account is discarded with it.
		if err := s.accounts.Delete(ctx, accountID); err != nil && !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to delete account with expired verification", slog.Any("error", err))
			return &models.TransientError{
				Stage:   "delete account",
				Message: "Clearing the account with an expired verification link failed!",
				Err:     err,
			}
		}

		s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
			EventType:     "verification_failed",
			AccountID:     accountID,
			IPAddress:     clientIP,
			FailureReason: "token_expired",
		})
		return models.ErrTokenExpired
	}

	if err := pkgauth.CompareTokenSecret(token.TokenHash, secret); err != nil {
		s.logger.Info("verification failed: secret mismatch", slog.String("account_id", accountID))
		s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
			EventType:     "verification_failed",
			AccountID:     accountID,
			IPAddress:     clientIP,
			FailureReason: "secret_mismatch",
		})
		return models.ErrInvalidToken
	}

	if err := s.accounts.SetVerified(ctx, accountID); err != nil {
		s.logger.Error("failed to mark account verified", slog.Any("error", err))
		return &models.TransientError{
			Stage:   "update account",
			Message: "An error occurred while updating the account to verified!",
			Err:     err,
		}
	}

	if err := s.tokens.DeleteByAccountID(ctx, accountID); err != nil {
		s.logger.Error("failed to delete redeemed verification tokens", slog.Any("error", err))
		return &models.TransientError{
			Stage:   "clear token",
			Message: "An error occurred finalizing the verification!",
			Err:     err,
		}
	}

	s.logger.Info("account verified", slog.String("account_id", accountID))
	s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
		EventType: "verification_redeemed",
		AccountID: accountID,
		IPAddress: clientIP,
		Success:   true,
	})

	return nil
}
