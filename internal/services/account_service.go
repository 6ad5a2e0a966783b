package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/pluggedhq/login-server/internal/models"
	pkgauth "github.com/pluggedhq/login-server/pkg/auth"
	pkglogger "github.com/pluggedhq/login-server/pkg/logger"
)

// AccountRepository defines the interface for account store operations
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	SetVerified(ctx context.Context, id string) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// AccountService orchestrates signup and sign-in. Each operation is a
// sequential pipeline (validate, hash, persist, notify); the first failing
// stage aborts the operation.
type AccountService struct {
	accounts     AccountRepository
	verification *VerificationService
	logger       *slog.Logger
	auditLogger  *pkglogger.AuditLogger
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accounts AccountRepository,
	verification *VerificationService,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AccountService {
	return &AccountService{
		accounts:     accounts,
		verification: verification,
		logger:       logger,
		auditLogger:  auditLogger,
	}
}

// Signup validates input, creates an unverified account and issues a
// verification token, emailing its plaintext secret. dateOfBirth is
// validated for presence but not persisted.
func (s *AccountService) Signup(ctx context.Context, name, email, password, dateOfBirth, clientIP string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if verr := validateSignup(name, email, password, dateOfBirth); verr != nil {
		return nil, verr
	}

	_, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("signup rejected: email already registered",
			slog.String("email", pkglogger.SanitizedEmail(email)))
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check for existing account", slog.Any("error", err))
		return nil, &models.TransientError{
			Stage:   "check account",
			Message: "An error occurred while checking for an existing account!",
			Err:     err,
		}
	}

	passwordHash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, &models.TransientError{
			Stage:   "hash password",
			Message: "An error occurred while hashing the password!",
			Err:     err,
		}
	}

	account, err := s.accounts.Create(ctx, &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Verified:     false,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to save account", slog.Any("error", err))
		return nil, &models.TransientError{
			Stage:   "save account",
			Message: "An error occurred while saving the account!",
			Err:     err,
		}
	}

	if err := s.verification.Issue(ctx, account); err != nil {
		// The account row stays; the user can retry signup after the
		// verification window lapses and cleanup discards it.
		return nil, err
	}

	s.logger.Info("account created", slog.String("account_id", account.ID))
	s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
		EventType: "signup",
		AccountID: account.ID,
		IPAddress: clientIP,
		Success:   true,
	})

	return account, nil
}

// SignIn authenticates by email and password. Unverified accounts are
// blocked before the password is ever compared.
func (s *AccountService) SignIn(ctx context.Context, email, password, clientIP string) (*models.Account, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if email == "" || password == "" {
		return nil, &models.ValidationError{Message: "Empty credentials supplied"}
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("signin failed: account not found")
			s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
				EventType:     "signin_failed",
				IPAddress:     clientIP,
				FailureReason: "account_not_found",
			})
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get account by email", slog.Any("error", err))
		return nil, &models.TransientError{
			Stage:   "check account",
			Message: "An error occurred while checking for an existing account!",
			Err:     err,
		}
	}

	if !account.Verified {
		s.logger.Info("signin blocked: email not verified", slog.String("account_id", account.ID))
		s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
			EventType:     "signin_failed",
			AccountID:     account.ID,
			IPAddress:     clientIP,
			FailureReason: "email_not_verified",
		})
		return nil, models.ErrUnverified
	}

	if err := pkgauth.ComparePassword(account.PasswordHash, password); err != nil {
		s.logger.Info("signin failed: invalid credentials")
		s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
			EventType:     "signin_failed",
			AccountID:     account.ID,
			IPAddress:     clientIP,
			FailureReason: "invalid_credentials",
		})
		return nil, models.ErrInvalidCredentials
	}

	s.logger.Info("signin successful", slog.String("account_id", account.ID))
	s.auditLogger.LogAccountEvent(pkglogger.AuditEvent{
		EventType: "signin",
		AccountID: account.ID,
		IPAddress: clientIP,
		Success:   true,
	})

	return account, nil
}
