package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pluggedhq/login-server/internal/database"
	"github.com/pluggedhq/login-server/internal/handlers"
	middlewareCustom "github.com/pluggedhq/login-server/internal/middleware"
	"github.com/pluggedhq/login-server/internal/routes"
	"github.com/pluggedhq/login-server/internal/services"
	pkghttp "github.com/pluggedhq/login-server/pkg/http"
	pkglogger "github.com/pluggedhq/login-server/pkg/logger"
)

// SentEmail represents a captured email message
type SentEmail struct {
	To          string
	Kind        string
	AccountID   string
	Secret      string
	RedirectURL string
}

// MockEmailService captures sent emails for test assertions
type MockEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

// SendVerificationEmail records the email
func (m *MockEmailService) SendVerificationEmail(ctx context.Context, email, accountID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{
		To:        email,
		Kind:      "verification",
		AccountID: accountID,
		Secret:    secret,
	})
	return nil
}

// SendPasswordResetEmail records the email
func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, email, redirectURL, accountID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{
		To:          email,
		Kind:        "reset",
		AccountID:   accountID,
		Secret:      secret,
		RedirectURL: redirectURL,
	})
	return nil
}

// GetLastEmail returns the most recent email sent
func (m *MockEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
	logger       *slog.Logger
}

// NewTestServer initializes a complete HTTP server with a real database and
// a mocked email sender
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	accountRepo, verificationTokenRepo, resetTokenRepo := InitializeRepositories(db)

	mockEmail := &MockEmailService{
		SentEmails: []SentEmail{},
	}

	auditLogger := pkglogger.NewAuditLogger(logger)

	verificationService := services.NewVerificationService(
		verificationTokenRepo,
		accountRepo,
		mockEmail,
		6*time.Hour,
		logger,
		auditLogger,
	)
	resetService := services.NewResetService(
		resetTokenRepo,
		accountRepo,
		mockEmail,
		15*time.Minute,
		logger,
		auditLogger,
	)
	accountService := services.NewAccountService(accountRepo, verificationService, logger, auditLogger)

	userHandler := handlers.NewUserHandler(accountService, verificationService, resetService, &pkghttp.IPConfig{}, logger)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(chiMiddleware.Recoverer)

	routes.RegisterRoutes(router, userHandler)

	return &TestServer{
		Server:       httptest.NewServer(router),
		DB:           db,
		EmailService: mockEmail,
		logger:       logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// PostJSON sends a JSON POST request to the test server
func (ts *TestServer) PostJSON(path string, body interface{}) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}
	return http.Post(ts.Server.URL+path, "application/json", &buf)
}

// Get sends a GET request to the test server without following redirects
func (ts *TestServer) Get(path string) (*http.Response, error) {
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return client.Get(ts.Server.URL + path)
}

// DecodeEnvelope decodes the {status, message, data} envelope from a response
func DecodeEnvelope(resp *http.Response) (map[string]interface{}, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode envelope %q: %w", raw, err)
	}
	return envelope, nil
}
