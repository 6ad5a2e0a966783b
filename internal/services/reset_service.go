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

// ResetTokenRepository defines the interface for reset token store operations
type ResetTokenRepository interface {
	Create(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error)
	GetLatestByAccountID(ctx context.Context, accountID string) (*models.ResetToken, error)
	DeleteByAccountID(ctx context.Context, accountID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// ResetService issues and redeems password reset tokens.
type ResetService struct {
	tokens      ResetTokenRepository
	accounts    AccountRepository
	mailer      EmailSender
	tokenExpiry time.Duration
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewResetService creates a new ResetService
func NewResetService(
	tokens ResetTokenRepository,
	accounts AccountRepository,
	mailer EmailSender,
	tokenExpiry time.Duration,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *ResetService {
	return &ResetService{
		tokens:      tokens,
		accounts:    accounts,
		mailer:      mailer,
		tokenExpiry: tokenExpiry,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Request issues a fresh reset token for a verified account. All prior
// tokens for the account are deleted first, so at most one token is live
// per account.
func (s *ResetService) Request(ctx context.Context, email, redirectURL, clientIP string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("reset request for unknown account")
			return models.ErrNotFound
		}
		s.logger.Error("failed to get account by email", slog.Any("error", err))
		return &models.TransientError{
			Stage:   "check account",
			Message: "An error occurred while checking for an existing account!",
			Err:     err,
		}
	}

	if !account.Verified {
		s.logger.Info("reset request blocked: email not verified", slog.String("account_id", account.ID))
		return models.ErrUnverified
	}

	if err := s.tokens.DeleteByAccountID(ctx, account.ID); err != nil {
		s.logger.Error("failed to clear prior reset tokens", slog.Any("error", err))
		return &models.TransientError{
			Stage:   "clear tokens",
			Message: "Clearing existing reset records failed!",
			Err:     err,
		}
	}

	secret := pkgauth.NewTokenSecret(account.ID)

	tokenHash, err := pkgauth.HashTokenSecret(secret)
	if err != nil {
		s.logger.Error("failed to hash reset secret", slog.Any("error", err))
		return &models.TransientError{
			Stage:   "hash token",
			Message: "An error occurred while hashing the reset string!",
			Err:     err,
		}
	}

	expiresAt := time.Now().Add(s.tokenExpiry)
	if _, err := s.tokens.Create(ctx, account.ID, tokenHash, expiresAt); err != nil {
		s.logger.Error("failed to save reset token",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return &models.TransientError{
			Stage:   "save token",
			Message: "Couldn't save the password reset data!",
			Err:     err,
		}
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, account.Email, redirectURL, account.ID, secret); err != nil {
		s.logger.Error("failed to send reset email",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return &models.TransientError{
			Stage:   "send mail",
			Message: "The reset email couldn't be sent!",
			Err:     err,
		}
	}

	s.logger.Info("password reset email sent",
		slog.String("account_id", account.ID),
		slog.Time("expires_at", expiresAt))
	s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
		EventType: "reset_requested",
		AccountID: account.ID,
		IPAddress: clientIP,
		Success:   true,
	})

	return nil
}

// Redeem completes a password reset. An expired token is deleted but the
// account row survives with its old password hash, unlike verification
// expiry.
func (s *ResetService) Redeem(ctx context.Context, accountID, secret, newPassword, clientIP string) error {
	if len(newPassword) < pkgauth.MinPasswordLen {
		return &models.ValidationError{Field: "newPassword", Message: "Password is too short!"}
	}

	token, err := s.tokens.GetLatestByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("reset token not found", slog.String("account_id", accountID))
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return &models.TransientError{
			Stage:   "check token",
			Message: "Checking for the password reset record failed!",
			Err:     err,
		}
	}

	if token.IsExpired() {
		if err := s.tokens.DeleteByAccountID(ctx, accountID); err != nil {
			s.logger.Error("failed to clear expired reset tokens", slog.Any("error", err))
			return &models.TransientError{
				Stage:   "clear tokens",
				Message: "Clearing the expired password reset record failed!",
				Err:     err,
			}
		}

		s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
			EventType:     "reset_failed",
			AccountID:     accountID,
			IPAddress:     clientIP,
			FailureReason: "token_expired",
		})
		return models.ErrTokenExpired
	}

	if err := pkgauth.CompareTokenSecret(token.TokenHash, secret); err != nil {
		s.logger.Info("reset failed: secret mismatch", slog.String("account_id", accountID))
		s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
			EventType:     "reset_failed",
			AccountID:     accountID,
			IPAddress:     clientIP,
			FailureReason: "secret_mismatch",
		})
		return models.ErrInvalidToken
	}

	passwordHash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return &models.TransientError{
			Stage:   "hash password",
			Message: "An error occurred while hashing the new password!",
			Err:     err,
		}
	}

	if err := s.accounts.UpdatePasswordHash(ctx, accountID, passwordHash); err != nil {
		s.logger.Error("failed to update account password", slog.Any("error", err))
		return &models.TransientError{
			Stage:   "update account",
			Message: "Updating the account password failed!",
			Err:     err,
		}
	}

	if err := s.tokens.DeleteByAccountID(ctx, accountID); err != nil {
		s.logger.Error("failed to delete redeemed reset tokens", slog.Any("error", err))
		return &models.TransientError{
			Stage:   "clear tokens",
			Message: "An error occurred finalizing the password reset!",
			Err:     err,
		}
	}

	s.logger.Info("password reset", slog.String("account_id", accountID))
	s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
		EventType: "reset_redeemed",
		AccountID: accountID,
		IPAddress: clientIP,
		Success:   true,
	})

	return nil
}
