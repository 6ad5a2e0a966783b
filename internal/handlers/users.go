package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/pluggedhq/login-server/internal/models"
	pkghttp "github.com/pluggedhq/login-server/pkg/http"
)

// AccountService defines the interface for signup and sign-in business logic
type AccountService interface {
	Signup(ctx context.Context, name, email, password, dateOfBirth, clientIP string) (*models.Account, error)
	SignIn(ctx context.Context, email, password, clientIP string) (*models.Account, error)
}

// VerificationService defines the interface for verification token redemption
type VerificationService interface {
	Redeem(ctx context.Context, accountID, secret, clientIP string) error
}

// ResetService defines the interface for the password reset flow
type ResetService interface {
	Request(ctx context.Context, email, redirectURL, clientIP string) error
	Redeem(ctx context.Context, accountID, secret, newPassword, clientIP string) error
}

// UserHandler handles account lifecycle HTTP requests
type UserHandler struct {
	accounts     AccountService
	verification VerificationService
	resets       ResetService
	ipConfig     *pkghttp.IPConfig
	logger       *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(accounts AccountService, verification VerificationService, resets ResetService, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		accounts:     accounts,
		verification: verification,
		resets:       resets,
		ipConfig:     ipConfig,
		logger:       logger,
	}
}

// Request/Response DTOs

// SignupRequest represents the request body for creating an account
type SignupRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dateOfBirth"`
}

// SigninRequest represents the request body for signing in
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RequestResetRequest represents the request body for starting a password reset
type RequestResetRequest struct {
	Email       string `json:"email"`
	RedirectURL string `json:"redirectUrl"`
}

// ResetPasswordRequest represents the request body for completing a password reset
type ResetPasswordRequest struct {
	UserID      string `json:"userId"`
	ResetString string `json:"resetString"`
	NewPassword string `json:"newPassword"`
}

// AccountResponse represents an account in the HTTP response. The password
// hash is never included.
type AccountResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Verified  bool   `json:"verified"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// accountModelToResponse converts an account model to a response DTO
func accountModelToResponse(account *models.Account) *AccountResponse {
	return &AccountResponse{
		ID:        account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Verified:  account.Verified,
		CreatedAt: account.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: account.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Signup creates an unverified account and emails a verification link
//
// @Summary Sign up a new account
// @Accept json
// @Produce json
// @Success 202 {object} pkghttp.Response
// @Failure 400 {object} pkghttp.Response
// @Failure 409 {object} pkghttp.Response
// @Failure 500 {object} pkghttp.Response
// @Router /user/signup [post]
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)
	account, err := h.accounts.Signup(r.Context(), req.Name, req.Email, req.Password, req.DateOfBirth, clientIP)
	if err != nil {
		h.writeSignupError(w, err)
		return
	}

	pkghttp.WritePending(w, "Verification email sent", accountModelToResponse(account))
}

func (h *UserHandler) writeSignupError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	var terr *models.TransientError
	switch {
	case errors.As(err, &verr):
		pkghttp.WriteBadRequest(w, verr.Message)
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "User with the provided email already exists")
	case errors.As(err, &terr):
		pkghttp.WriteInternalError(w, terr.Message)
	default:
		pkghttp.WriteInternalError(w, "An error occurred during signup!")
	}
}

// Verify redeems a verification link. It never renders JSON; success and
// failure both redirect to the verified page, failures carrying the message
// as a query parameter.
//
// @Summary Redeem an email verification link
// @Success 303
// @Router /user/verify/{accountId}/{secret} [get]
func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")
	secret := chi.URLParam(r, "secret")
	if accountID == "" || secret == "" {
		h.redirectVerified(w, r, "Empty verification details are not allowed")
		return
	}

	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)
	if err := h.verification.Redeem(r.Context(), accountID, secret, clientIP); err != nil {
		h.redirectVerified(w, r, verifyErrorMessage(err))
		return
	}

	h.redirectVerified(w, r, "")
}

func verifyErrorMessage(err error) string {
	var terr *models.TransientError
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "Account record doesn't exist or has been verified already. Please sign up or log in."
	case errors.Is(err, models.ErrTokenExpired):
		return "Link has expired. Please sign up again."
	case errors.Is(err, models.ErrInvalidToken):
		return "Invalid verification details passed. Check your inbox."
	case errors.As(err, &terr):
		return terr.Message
	default:
		return "An error occurred while verifying the account"
	}
}

// redirectVerified sends the browser to the static confirmation page. A
// non-empty message marks the redirect as an error.
func (h *UserHandler) redirectVerified(w http.ResponseWriter, r *http.Request, message string) {
	target := "/user/verified"
	if message != "" {
		query := url.Values{}
		query.Set("error", "true")
		query.Set("message", message)
		target += "?" + query.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SignIn authenticates an account by email and password
//
// @Summary Sign in
// @Accept json
// @Produce json
// @Success 200 {object} pkghttp.Response
// @Failure 400 {object} pkghttp.Response
// @Failure 401 {object} pkghttp.Response
// @Failure 403 {object} pkghttp.Response
// @Failure 500 {object} pkghttp.Response
// @Router /user/signin [post]
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)
	account, err := h.accounts.SignIn(r.Context(), req.Email, req.Password, clientIP)
	if err != nil {
		h.writeSignInError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, "Signin successful", accountModelToResponse(account))
}

func (h *UserHandler) writeSignInError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	var terr *models.TransientError
	switch {
	case errors.As(err, &verr):
		pkghttp.WriteBadRequest(w, verr.Message)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteUnauthorized(w, "Invalid credentials entered!")
	case errors.Is(err, models.ErrUnverified):
		pkghttp.WriteForbidden(w, "Email hasn't been verified yet. Check your inbox.")
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteUnauthorized(w, "Invalid password entered!")
	case errors.As(err, &terr):
		pkghttp.WriteInternalError(w, terr.Message)
	default:
		pkghttp.WriteInternalError(w, "An error occurred during sign-in!")
	}
}

// RequestPasswordReset issues a fresh reset token and emails its link
//
// @Summary Request a password reset email
// @Accept json
// @Produce json
// @Success 202 {object} pkghttp.Response
// @Failure 400 {object} pkghttp.Response
// @Failure 403 {object} pkghttp.Response
// @Failure 404 {object} pkghttp.Response
// @Failure 500 {object} pkghttp.Response
// @Router /user/requestPasswordReset [post]
func (h *UserHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req RequestResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)
	if err := h.resets.Request(r.Context(), req.Email, req.RedirectURL, clientIP); err != nil {
		h.writeResetRequestError(w, err)
		return
	}

	pkghttp.WritePending(w, "Password reset email sent", nil)
}

func (h *UserHandler) writeResetRequestError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	var terr *models.TransientError
	switch {
	case errors.As(err, &verr):
		pkghttp.WriteBadRequest(w, verr.Message)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "No account with the supplied email exists!")
	case errors.Is(err, models.ErrUnverified):
		pkghttp.WriteForbidden(w, "Email hasn't been verified yet. Check your inbox.")
	case errors.As(err, &terr):
		pkghttp.WriteInternalError(w, terr.Message)
	default:
		pkghttp.WriteInternalError(w, "An error occurred while requesting a password reset!")
	}
}

// ResetPassword redeems a reset token and replaces the account password
//
// @Summary Complete a password reset
// @Accept json
// @Produce json
// @Success 200 {object} pkghttp.Response
// @Failure 400 {object} pkghttp.Response
// @Failure 401 {object} pkghttp.Response
// @Failure 404 {object} pkghttp.Response
// @Failure 410 {object} pkghttp.Response
// @Failure 500 {object} pkghttp.Response
// @Router /user/resetPassword [post]
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)
	if err := h.resets.Redeem(r.Context(), req.UserID, req.ResetString, req.NewPassword, clientIP); err != nil {
		h.writeResetError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, "Password has been reset.", nil)
}

func (h *UserHandler) writeResetError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	var terr *models.TransientError
	switch {
	case errors.As(err, &verr):
		pkghttp.WriteBadRequest(w, verr.Message)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Password reset request not found.")
	case errors.Is(err, models.ErrTokenExpired):
		pkghttp.WriteGone(w, "Password reset link has expired")
	case errors.Is(err, models.ErrInvalidToken):
		pkghttp.WriteUnauthorized(w, "Invalid password reset details passed.")
	case errors.As(err, &terr):
		pkghttp.WriteInternalError(w, terr.Message)
	default:
		pkghttp.WriteInternalError(w, "An error occurred while resetting the password!")
	}
}
