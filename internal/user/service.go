package user

import (
	"context"
	"errors"
	"fmt"

	"bookshelf/internal/platform/crypto"
)

// ErrWrongPassword is returned when the current password check fails.
var ErrWrongPassword = errors.New("current password incorrect")

// Service provides account management.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new unapproved account. The user cannot log in
// until an admin approves it.
func (s *Service) Register(ctx context.Context, username, password string) (User, error) {
	if username == "" || password == "" {
		return User{}, errors.New("username and password are required")
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	u := User{
		Username: username,
		Password: hash,
		Role:     RoleUser,
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// GetByUsername returns a user by username.
func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// List returns all accounts. Admin only; enforced at the HTTP layer.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Approve marks an account as approved.
func (s *Service) Approve(ctx context.Context, id string) error {
	return s.repo.Approve(ctx, id)
}

// Delete removes an account. The admin account is protected.
func (s *Service) Delete(ctx context.Context, id string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == RoleAdmin {
		return ErrCannotDeleteAdmin
	}
	return s.repo.Delete(ctx, id)
}

// ResetPassword sets a new password for an account without checking the
// old one. Admin only; enforced at the HTTP layer.
func (s *Service) ResetPassword(ctx context.Context, id, newPassword string) error {
	if newPassword == "" {
		return errors.New("password is required")
	}
	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

// ChangePassword verifies the current password and replaces it.
func (s *Service) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !crypto.VerifyPassword(u.Password, currentPassword) {
		return ErrWrongPassword
	}
	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, u.ID, hash)
}

// EnsureAdmin creates the seed admin account if it does not exist yet.
// Called once on startup.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u := User{
		Username: username,
		Password: hash,
		Approved: true,
		Role:     RoleAdmin,
	}
	if err := s.repo.Create(ctx, &u); err != nil && !errors.Is(err, ErrUsernameTaken) {
		return err
	}
	return nil
}

// EnrollMFA generates and stores a TOTP secret for the user, returning
// the secret. An existing secret is kept so a re-requested QR code
// still matches the enrolled authenticator.
func (s *Service) EnrollMFA(ctx context.Context, username string) (string, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u.MFAEnabled() {
		return *u.MFASecret, nil
	}

	secret, err := crypto.NewTOTPSecret(username)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetMFASecret(ctx, username, secret); err != nil {
		return "", err
	}
	return secret, nil
}
