package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookshelf/internal/httpx"
	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/user"
)

// HTTPHandler exposes login, password change, and MFA enrollment.
type HTTPHandler struct {
	service *Service
	users   *user.Service
}

// NewHTTPHandler creates a new auth HTTP handler.
func NewHTTPHandler(service *Service, users *user.Service) *HTTPHandler {
	return &HTTPHandler{service: service, users: users}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Token    string `json:"token,omitempty"` // TOTP code when enrolled
}

// Login handles POST /users/login.
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			httpx.JSONError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials", nil)
		case errors.Is(err, ErrNotApproved):
			httpx.JSONError(w, http.StatusForbidden, "NOT_APPROVED", "User not approved by admin", nil)
		case errors.Is(err, ErrInvalidMFACode):
			httpx.JSONError(w, http.StatusUnauthorized, "INVALID_MFA", "Invalid MFA token", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}
	httpx.JSONSuccess(w, map[string]string{"access_token": token}, nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles POST /me/password.
func (h *HTTPHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "All fields are required", nil)
		return
	}

	err := h.users.ChangePassword(r.Context(), httpx.UsernameFrom(r), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, user.ErrWrongPassword) {
			httpx.JSONError(w, http.StatusForbidden, "WRONG_PASSWORD", "Current password incorrect", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// MFAQRCode handles GET /me/mfa/qr. It enrolls a secret on first call
// and always answers with the provisioning QR code as a PNG.
func (h *HTTPHandler) MFAQRCode(w http.ResponseWriter, r *http.Request) {
	username := httpx.UsernameFrom(r)

	secret, err := h.users.EnrollMFA(r.Context(), username)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	png, err := crypto.QRCodePNG(username, secret)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

type verifyMFARequest struct {
	Token string `json:"token"`
}

// MFAVerify handles POST /me/mfa/verify, confirming the enrollment by
// checking one code against the stored secret.
func (h *HTTPHandler) MFAVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyMFARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}

	u, err := h.users.GetByUsername(r.Context(), httpx.UsernameFrom(r))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if !u.MFAEnabled() || !crypto.ValidateTOTP(req.Token, *u.MFASecret) {
		httpx.JSONError(w, http.StatusUnauthorized, "INVALID_MFA", "Invalid token. Try again.", nil)
		return
	}
	httpx.JSONSuccess(w, map[string]bool{"verified": true}, nil)
}
