package export

import (
	"bytes"
	"net/http"

	"bookshelf/internal/catalog"
	"bookshelf/internal/httpx"
)

// HTTPHandler serves catalog downloads. Visibility follows the same
// rule as listing: admins export everything, everyone else their own
// records.
type HTTPHandler struct {
	service *catalog.Service
	covers  CoverOpener
}

// NewHTTPHandler creates a new export HTTP handler.
func NewHTTPHandler(service *catalog.Service, coverStore CoverOpener) *HTTPHandler {
	return &HTTPHandler{service: service, covers: coverStore}
}

func (h *HTTPHandler) list(r *http.Request) ([]catalog.Book, error) {
	return h.service.ListFor(r.Context(), httpx.UsernameFrom(r), httpx.RoleFrom(r), false)
}

// CSV handles GET /export/csv.
func (h *HTTPHandler) CSV(w http.ResponseWriter, r *http.Request) {
	books, err := h.list(r)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, books); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "EXPORT_FAILED", "Could not build CSV export", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="library.csv"`)
	_, _ = w.Write(buf.Bytes())
}

// PDF handles GET /export/pdf.
func (h *HTTPHandler) PDF(w http.ResponseWriter, r *http.Request) {
	books, err := h.list(r)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, books, h.covers); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "EXPORT_FAILED", "Could not build PDF export", nil)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="library.pdf"`)
	_, _ = w.Write(buf.Bytes())
}
