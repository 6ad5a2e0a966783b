package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pluggedhq/login-server/internal/database"
	"github.com/pluggedhq/login-server/internal/models"
)

// ResetTokenRepository handles password reset token data access
type ResetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewResetTokenRepository(db *database.DB) *ResetTokenRepository {
	return &ResetTokenRepository{pool: db.Pool}
}

func scanResetTokenRow(row rowScanner) (*models.ResetToken, error) {
	var token models.ResetToken

	err := row.Scan(
		&token.ID, &token.AccountID, &token.TokenHash,
		&token.CreatedAt, &token.ExpiresAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &token, nil
}

// Create inserts a new reset token row. Callers delete prior rows first; the
// single-active-token invariant is enforced at issuance, not here.
func (r *ResetTokenRepository) Create(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.ResetToken, error) {
	query := `
		INSERT INTO reset_tokens (account_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, account_id, token_hash, created_at, expires_at
	`

	token, err := scanResetTokenRow(r.pool.QueryRow(ctx, query, accountID, tokenHash, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	return token, nil
}

// GetLatestByAccountID returns the most recently created token for the account.
func (r *ResetTokenRepository) GetLatestByAccountID(ctx context.Context, accountID string) (*models.ResetToken, error) {
	query := `
		SELECT id, account_id, token_hash, created_at, expires_at
		FROM reset_tokens
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	return scanResetTokenRow(r.pool.QueryRow(ctx, query, accountID))
}

// DeleteByAccountID deletes all tokens for an account.
func (r *ResetTokenRepository) DeleteByAccountID(ctx context.Context, accountID string) error {
	query := `DELETE FROM reset_tokens WHERE account_id = $1`

	_, err := r.pool.Exec(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}

	return nil
}

// DeleteExpired removes expired reset tokens. Accounts are untouched; reset
// expiry never cascades to the account row.
func (r *ResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM reset_tokens WHERE expires_at < NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}

	return result.RowsAffected(), nil
}
