package background

import (
	"context"
	"log/slog"
	"time"
)

// verificationPurger removes expired verification tokens together with
// their still-unverified accounts.
type verificationPurger interface {
	PurgeExpired(ctx context.Context) (int64, int64, error)
}

// resetPurger removes expired reset tokens. Accounts are untouched.
type resetPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupManager periodically purges expired verification and reset tokens.
// Expired verification tokens take their unverified accounts with them, the
// same outcome a user would trigger by following a stale link.
type CleanupManager struct {
	verifications verificationPurger
	resets        resetPurger
	logger        *slog.Logger
	interval      time.Duration
	stopCh        chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	verifications verificationPurger,
	resets resetPurger,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		verifications: verifications,
		resets:        resets,
		logger:        logger,
		interval:      interval,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup purges expired tokens from both stores
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cm.logger.Info("starting expired token cleanup")

	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tokens, accounts, err := cm.verifications.PurgeExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to purge expired verification tokens", slog.Any("error", err))
	} else if tokens > 0 || accounts > 0 {
		cm.logger.Info("purged expired verification tokens",
			slog.Int64("tokens_deleted", tokens),
			slog.Int64("accounts_deleted", accounts))
	}

	deleted, err := cm.resets.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to delete expired reset tokens", slog.Any("error", err))
	} else if deleted > 0 {
		cm.logger.Info("deleted expired reset tokens",
			slog.Int64("tokens_deleted", deleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
