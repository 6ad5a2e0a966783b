package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/pluggedhq/login-server/internal/models"
	pkghttp "github.com/pluggedhq/login-server/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithVerifyParams injects the chi route params the Verify handler reads
func WithVerifyParams(req *http.Request, accountID, secret string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("accountId", accountID)
	routeCtx.URLParams.Add("secret", secret)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

// AssertEnvelope checks the HTTP status and the {status, message} envelope
func AssertEnvelope(t *testing.T, w *httptest.ResponseRecorder, expectedCode int, expectedStatus, expectedMessage string) pkghttp.Response {
	assert.Equal(t, expectedCode, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	var resp pkghttp.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode response JSON")
	assert.Equal(t, expectedStatus, resp.Status, "Envelope status mismatch")
	assert.Equal(t, expectedMessage, resp.Message, "Envelope message mismatch")
	return resp
}

// AssertRedirect checks a redirect response and returns its Location header
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder) string {
	assert.Equal(t, http.StatusSeeOther, w.Code, "Expected a redirect")
	location := w.Header().Get("Location")
	assert.NotEmpty(t, location, "Redirect Location should not be empty")
	return location
}

// MockAccountService implements AccountService for testing
type MockAccountService struct {
	SignupFunc func(ctx context.Context, name, email, password, dateOfBirth, clientIP string) (*models.Account, error)
	SignInFunc func(ctx context.Context, email, password, clientIP string) (*models.Account, error)
}

func (m *MockAccountService) Signup(ctx context.Context, name, email, password, dateOfBirth, clientIP string) (*models.Account, error) {
	if m.SignupFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.SignupFunc(ctx, name, email, password, dateOfBirth, clientIP)
}

func (m *MockAccountService) SignIn(ctx context.Context, email, password, clientIP string) (*models.Account, error) {
	if m.SignInFunc == nil {
		return nil, models.ErrInvalidCredentials
	}
	return m.SignInFunc(ctx, email, password, clientIP)
}

// MockVerificationService implements VerificationService for testing
type MockVerificationService struct {
	RedeemFunc func(ctx context.Context, accountID, secret, clientIP string) error
}

func (m *MockVerificationService) Redeem(ctx context.Context, accountID, secret, clientIP string) error {
	if m.RedeemFunc == nil {
		return models.ErrNotFound
	}
	return m.RedeemFunc(ctx, accountID, secret, clientIP)
}

// MockResetService implements ResetService for testing
type MockResetService struct {
	RequestFunc func(ctx context.Context, email, redirectURL, clientIP string) error
	RedeemFunc  func(ctx context.Context, accountID, secret, newPassword, clientIP string) error
}

func (m *MockResetService) Request(ctx context.Context, email, redirectURL, clientIP string) error {
	if m.RequestFunc == nil {
		return models.ErrNotFound
	}
	return m.RequestFunc(ctx, email, redirectURL, clientIP)
}

func (m *MockResetService) Redeem(ctx context.Context, accountID, secret, newPassword, clientIP string) error {
	if m.RedeemFunc == nil {
		return models.ErrNotFound
	}
	return m.RedeemFunc(ctx, accountID, secret, newPassword, clientIP)
}
