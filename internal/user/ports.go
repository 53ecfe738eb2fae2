package user

import (
	"context"
)

// Repository defines the contract for user storage.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context) ([]User, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetMFASecret(ctx context.Context, username, secret string) error
}
