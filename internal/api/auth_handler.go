package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/arganhq/argan/internal/auth"
	"github.com/arganhq/argan/internal/metrics"
)

const minPasswordLength = 8

// authHandler groups the account lifecycle HTTP handlers.
type authHandler struct {
	svc     *auth.Service
	metrics *metrics.Metrics
}

func newAuthHandler(svc *auth.Service, m *metrics.Metrics) *authHandler {
	return &authHandler{svc: svc, metrics: m}
}

// Register handles POST /api/v1/auth/register.
func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	var errs []fieldError
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, fieldError{"name", "name is required"})
	}
	if !strings.Contains(req.Email, "@") {
		errs = append(errs, fieldError{"email", "must be a valid email address"})
	}
	if len(req.Password) < minPasswordLength {
		errs = append(errs, fieldError{"password", "must be at least 8 characters"})
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	if err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		writeDomainError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncRegistration()
		h.metrics.IncEmailSent("verification")
	}
	writeSuccess(w, http.StatusCreated,
		"Registration successful. Please check your email to verify your account.", nil)
}

// Login handles POST /api/v1/auth/login.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	var errs []fieldError
	if req.Email == "" {
		errs = append(errs, fieldError{"email", "email is required"})
	}
	if req.Password == "" {
		errs = append(errs, fieldError{"password", "password is required"})
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.metrics != nil && errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.IncLoginFailure()
		}
		writeDomainError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncLoginSuccess()
	}
	writeSuccess(w, http.StatusOK, "Login successful", result)
}

// VerifyEmail handles POST /api/v1/auth/verify-email.
func (h *authHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse request body")
		return
	}
	if req.Token == "" {
		writeValidationError(w, []fieldError{{"token", "token is required"}})
		return
	}

	if err := h.svc.VerifyEmail(r.Context(), req.Token); err != nil {
		if h.metrics != nil {
			h.metrics.IncVerification("failure")
		}
		writeDomainError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncVerification("success")
	}
	writeSuccess(w, http.StatusOK, "Email verified successfully", nil)
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. The response is
// identical whether or not the email exists.
func (h *authHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse request body")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeValidationError(w, []fieldError{{"email", "must be a valid email address"}})
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		writeDomainError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK,
		"If the email exists, a password reset link has been sent.", nil)
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *authHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	var errs []fieldError
	if req.Token == "" {
		errs = append(errs, fieldError{"token", "token is required"})
	}
	if len(req.NewPassword) < minPasswordLength {
		errs = append(errs, fieldError{"newPassword", "must be at least 8 characters"})
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if h.metrics != nil {
			h.metrics.IncPasswordReset("failure")
		}
		writeDomainError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncPasswordReset("success")
	}
	writeSuccess(w, http.StatusOK, "Password reset successfully", nil)
}

// Me handles GET /api/v1/auth/me.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	writeSuccess(w, http.StatusOK, "Profile retrieved successfully", id)
}
