package catalog

import (
	"context"
	"errors"
	"fmt"
)

// RoleAdmin is the user role allowed to see every owner's records.
const RoleAdmin = "ADMIN"

// Service provides catalog business logic on top of a Repository and a
// Resolver.
type Service struct {
	repo     Repository
	resolver Resolver
}

// NewService creates a new catalog service.
func NewService(repo Repository, resolver Resolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// AddBook resolves an ISBN against the external provider and inserts
// the result as a record owned by owner.
//
// The existence check runs before the resolver call so duplicates are
// declined without a network round trip; the unique constraint behind
// Insert still decides the winner if two identical ISBNs race past it.
func (s *Service) AddBook(ctx context.Context, isbn, owner string) (Book, error) {
	isbn = NormalizeISBN(isbn)
	if isbn == "" || !ValidISBN(isbn) {
		return Book{}, ErrInvalidISBN
	}

	_, err := s.repo.GetByISBN(ctx, isbn)
	if err == nil {
		return Book{}, ErrDuplicateISBN
	}
	if !errors.Is(err, ErrNotFound) {
		return Book{}, fmt.Errorf("checking existing isbn: %w", err)
	}

	res, err := s.resolver.Resolve(ctx, isbn)
	if err != nil {
		if errors.Is(err, ErrUpstreamNotFound) {
			return Book{}, err
		}
		return Book{}, fmt.Errorf("%w: %v", ErrResolver, err)
	}

	return s.repo.Insert(ctx, res.Candidate, owner)
}

// Toggle flips the in-library flag of a record.
func (s *Service) Toggle(ctx context.Context, id string) (Book, error) {
	return s.repo.Toggle(ctx, id)
}

// ListFor returns the records visible to the requesting user. Admins
// see every owner; everyone else only their own records.
func (s *Service) ListFor(ctx context.Context, username, role string, inLibraryOnly bool) ([]Book, error) {
	q := Query{InLibraryOnly: inLibraryOnly}
	if role != RoleAdmin {
		q.Owner = username
	}
	return s.repo.List(ctx, q)
}
