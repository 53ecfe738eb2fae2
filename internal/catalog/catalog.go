package catalog

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a book id does not exist.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicateISBN is returned when a book with the same ISBN already exists.
	ErrDuplicateISBN = errors.New("book with this ISBN already exists")
	// ErrInvalidISBN is returned for an empty or malformed ISBN, before any I/O.
	ErrInvalidISBN = errors.New("invalid ISBN")
	// ErrUpstreamNotFound is returned when the metadata provider has no entry for the ISBN.
	ErrUpstreamNotFound = errors.New("no metadata found for ISBN")
	// ErrResolver wraps transient metadata provider failures so callers
	// can tell them apart from storage errors.
	ErrResolver = errors.New("metadata resolution failed")
)

// Book is a catalog record. Identity is assigned by the store on insert
// and never changes afterwards.
type Book struct {
	ID            string    `json:"id"`
	ISBN          string    `json:"isbn"`
	Title         string    `json:"title"`
	Authors       string    `json:"authors"`
	Publisher     string    `json:"publisher,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"`
	CoverPath     *string   `json:"cover_path,omitempty"`
	InLibrary     bool      `json:"in_library"`
	Owner         string    `json:"owner"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Candidate is resolver output: a record-to-be with no identity yet.
type Candidate struct {
	ISBN          string
	Title         string
	Authors       string
	Publisher     string
	PublishedDate string
	CoverPath     *string
}

// Resolution carries a candidate plus the outcome of the cover download.
// A failed download does not fail the resolve as a whole; callers that
// care can inspect CoverErr.
type Resolution struct {
	Candidate Candidate
	CoverErr  error
}

// Query defines filters for listing books.
type Query struct {
	Owner         string
	InLibraryOnly bool
}
