package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pluggedhq/login-server/internal/database"
	"github.com/pluggedhq/login-server/internal/models"
)

// VerificationTokenRepository handles email verification token data access
type VerificationTokenRepository struct {
	pool *pgxpool.Pool
}

func NewVerificationTokenRepository(db *database.DB) *VerificationTokenRepository {
	return &VerificationTokenRepository{pool: db.Pool}
}

func scanVerificationTokenRow(row rowScanner) (*models.VerificationToken, error) {
	var token models.VerificationToken

	err := row.Scan(
		&token.ID, &token.AccountID, &token.TokenHash,
		&token.CreatedAt, &token.ExpiresAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &token, nil
}

// Create inserts a new verification token row.
func (r *VerificationTokenRepository) Create(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.VerificationToken, error) {
	query := `
		INSERT INTO verification_tokens (account_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, account_id, token_hash, created_at, expires_at
	`

	token, err := scanVerificationTokenRow(r.pool.QueryRow(ctx, query, accountID, tokenHash, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create verification token: %w", err)
	}

	return token, nil
}

// GetLatestByAccountID returns the most recently created token for the
// account. Nothing prevents multiple rows per account before redemption, so
// recency is the deterministic tie-break.
func (r *VerificationTokenRepository) GetLatestByAccountID(ctx context.Context, accountID string) (*models.VerificationToken, error) {
	query := `
		SELECT id, account_id, token_hash, created_at, expires_at
		FROM verification_tokens
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	return scanVerificationTokenRow(r.pool.QueryRow(ctx, query, accountID))
}

// DeleteByAccountID deletes all tokens for an account.
func (r *VerificationTokenRepository) DeleteByAccountID(ctx context.Context, accountID string) error {
	query := `DELETE FROM verification_tokens WHERE account_id = $1`

	_, err := r.pool.Exec(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete verification tokens: %w", err)
	}

	return nil
}

// PurgeExpired deletes expired verification tokens together with their
// still-unverified accounts. An unverified account whose verification window
// lapsed is discarded. Returns the number of tokens and accounts deleted.
func (r *VerificationTokenRepository) PurgeExpired(ctx context.Context) (int64, int64, error) {
	query := `
		WITH expired AS (
			DELETE FROM verification_tokens
			WHERE expires_at < NOW()
			RETURNING account_id
		), removed AS (
			DELETE FROM accounts
			WHERE id IN (SELECT account_id FROM expired) AND verified = FALSE
			RETURNING id
		)
		SELECT
			(SELECT COUNT(*) FROM expired),
			(SELECT COUNT(*) FROM removed)
	`

	var tokensDeleted, accountsDeleted int64
	if err := r.pool.QueryRow(ctx, query).Scan(&tokensDeleted, &accountsDeleted); err != nil {
		return 0, 0, fmt.Errorf("failed to purge expired verification tokens: %w", err)
	}

	return tokensDeleted, accountsDeleted, nil
}
