package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookshelf/internal/httpx"
)

// HTTPHandler exposes registration and the admin user-management
// endpoints.
type HTTPHandler struct {
	service *Service
}

// NewHTTPHandler creates a new user HTTP handler.
func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /users/register. New accounts await admin
// approval.
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Username and password are required", nil)
		return
	}

	u, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			httpx.JSONError(w, http.StatusConflict, "USERNAME_TAKEN", "Username already exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessCreated(w, u)
}

// List handles GET /admin/users.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSONSuccess(w, users, nil)
}

// Approve handles POST /admin/users/{id}/approve.
func (h *HTTPHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Approve(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// Delete handles DELETE /admin/users/{id}.
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
		case errors.Is(err, ErrCannotDeleteAdmin):
			httpx.JSONError(w, http.StatusForbidden, "FORBIDDEN", "Cannot delete admin", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}
	httpx.JSONSuccessNoContent(w)
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ResetPassword handles POST /admin/users/{id}/password.
func (h *HTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if req.NewPassword == "" {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Password required", nil)
		return
	}

	if err := h.service.ResetPassword(r.Context(), r.PathValue("id"), req.NewPassword); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
