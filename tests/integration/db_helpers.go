package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pluggedhq/login-server/internal/database"
	"github.com/pluggedhq/login-server/internal/models"
	"github.com/pluggedhq/login-server/internal/repositories"
	"github.com/pluggedhq/login-server/migrations"
	pkgauth "github.com/pluggedhq/login-server/pkg/auth"
)

// TestDB manages PostgreSQL testcontainer and database operations
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase creates a PostgreSQL testcontainer, runs migrations, returns TestDB
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("login_server"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         &database.DB{Pool: pool},
	}, nil
}

// runMigrations executes all goose migrations against the embedded set
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	// Goose needs a stdlib DB connection
	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"verification_tokens",
		"reset_tokens",
		"accounts",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// InitializeRepositories creates all repository instances from database wrapper
func InitializeRepositories(db *database.DB) (
	*repositories.AccountRepository,
	*repositories.VerificationTokenRepository,
	*repositories.ResetTokenRepository,
) {
	return repositories.NewAccountRepository(db),
		repositories.NewVerificationTokenRepository(db),
		repositories.NewResetTokenRepository(db)
}

// SeedAccount inserts a test account with hashed password
func SeedAccount(ctx context.Context, pool *pgxpool.Pool, email, password string, verified bool) (*models.Account, error) {
	passwordHash, err := pkgauth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO accounts (id, email, name, password_hash, verified, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, 'Test Account', $2, $3, NOW(), NOW())
		RETURNING id, email, name, password_hash, verified, created_at, updated_at
	`

	var account models.Account
	err = pool.QueryRow(ctx, query, email, passwordHash, verified).Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.PasswordHash,
		&account.Verified,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	return &account, nil
}

// SeedVerificationToken creates a live verification token and returns its
// plaintext secret
func SeedVerificationToken(ctx context.Context, pool *pgxpool.Pool, accountID string) (string, error) {
	return seedToken(ctx, pool, "verification_tokens", accountID, "NOW() + INTERVAL '6 hours'")
}

// SeedExpiredVerificationToken creates a verification token past its window
func SeedExpiredVerificationToken(ctx context.Context, pool *pgxpool.Pool, accountID string) (string, error) {
	return seedToken(ctx, pool, "verification_tokens", accountID, "NOW() - INTERVAL '1 hour'")
}

// SeedResetToken creates a live reset token and returns its plaintext secret
func SeedResetToken(ctx context.Context, pool *pgxpool.Pool, accountID string) (string, error) {
	return seedToken(ctx, pool, "reset_tokens", accountID, "NOW() + INTERVAL '15 minutes'")
}

// SeedExpiredResetToken creates a reset token past its window
func SeedExpiredResetToken(ctx context.Context, pool *pgxpool.Pool, accountID string) (string, error) {
	return seedToken(ctx, pool, "reset_tokens", accountID, "NOW() - INTERVAL '1 minute'")
}

func seedToken(ctx context.Context, pool *pgxpool.Pool, table, accountID, expiresAtSQL string) (string, error) {
	secret := pkgauth.NewTokenSecret(accountID)
	tokenHash, err := pkgauth.HashTokenSecret(secret)
	if err != nil {
		return "", fmt.Errorf("failed to hash token secret: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (account_id, token_hash, created_at, expires_at)
		VALUES ($1, $2, NOW(), %s)
		RETURNING account_id
	`, table, expiresAtSQL)

	var returnedID string
	if err := pool.QueryRow(ctx, query, accountID, tokenHash).Scan(&returnedID); err != nil {
		return "", fmt.Errorf("failed to insert token into %s: %w", table, err)
	}

	return secret, nil
}
