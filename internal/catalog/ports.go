package catalog

import (
	"context"
)

// Repository defines the contract for book storage.
type Repository interface {
	// Insert persists a candidate as a new record owned by owner. It is
	// atomic with respect to ISBN uniqueness: a concurrent insert for
	// the same ISBN yields ErrDuplicateISBN for exactly one caller.
	Insert(ctx context.Context, c Candidate, owner string) (Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	Toggle(ctx context.Context, id string) (Book, error)
	List(ctx context.Context, q Query) ([]Book, error)
}

// Resolver turns an ISBN into a candidate record using an external
// metadata provider.
type Resolver interface {
	Resolve(ctx context.Context, isbn string) (Resolution, error)
}
