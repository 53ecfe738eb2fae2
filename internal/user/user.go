package user

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when a username is already registered.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrCannotDeleteAdmin guards the seed admin account.
	ErrCannotDeleteAdmin = errors.New("cannot delete admin")
)

// Roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is an account. New registrations start unapproved and cannot log
// in until an admin approves them.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // bcrypt hash
	Approved  bool      `json:"approved"`
	Role      string    `json:"role"`
	MFASecret *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MFAEnabled reports whether the user has an enrolled TOTP secret.
func (u User) MFAEnabled() bool {
	return u.MFASecret != nil && *u.MFASecret != ""
}
