package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookshelf/internal/httpx"
)

// HTTPHandler exposes the catalog service over HTTP.
type HTTPHandler struct {
	service *Service
}

// NewHTTPHandler creates a new catalog HTTP handler.
func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type addBookRequest struct {
	ISBN string `json:"isbn"`
}

// Add handles POST /books.
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}

	book, err := h.service.AddBook(r.Context(), req.ISBN, httpx.UsernameFrom(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidISBN):
			httpx.JSONError(w, http.StatusBadRequest, "INVALID_ISBN", "ISBN is missing or malformed", nil)
		case errors.Is(err, ErrDuplicateISBN):
			httpx.JSONError(w, http.StatusConflict, "DUPLICATE_ISBN", "Book already exists", nil)
		case errors.Is(err, ErrUpstreamNotFound):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND_UPSTREAM", "Book not found via ISBN", nil)
		case errors.Is(err, ErrResolver):
			httpx.JSONError(w, http.StatusBadGateway, "RESOLVER_ERROR", "Could not resolve book metadata", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}
	httpx.JSONSuccessCreated(w, book)
}

// List handles GET /books.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	inLibraryOnly := r.URL.Query().Get("in_library") == "true"

	books, err := h.service.ListFor(r.Context(), httpx.UsernameFrom(r), httpx.RoleFrom(r), inLibraryOnly)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if books == nil {
		books = []Book{}
	}
	httpx.JSONSuccess(w, books, nil)
}

// Toggle handles POST /books/{id}/toggle.
func (h *HTTPHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	book, err := h.service.Toggle(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, book, nil)
}
