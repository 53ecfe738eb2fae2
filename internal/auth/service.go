// Package auth handles login, including admin approval gating and
// optional TOTP second factor.
package auth

import (
	"context"
	"errors"
	"time"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/user"
)

var (
	// ErrInvalidCredentials covers unknown username and wrong password
	// without distinguishing them to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotApproved is returned for accounts awaiting admin approval.
	ErrNotApproved = errors.New("user not approved by admin")
	// ErrInvalidMFACode is returned when an enrolled user supplies a
	// missing or wrong TOTP code.
	ErrInvalidMFACode = errors.New("invalid MFA code")
)

const tokenTTL = 12 * time.Hour

// Service authenticates users and issues access tokens.
type Service struct {
	secret string
	users  *user.Service
}

// NewService creates a new auth service signing tokens with secret.
func NewService(secret string, users *user.Service) *Service {
	return &Service{secret: secret, users: users}
}

// Login verifies credentials, approval status and, when enrolled, the
// TOTP code, and returns a signed access token.
func (s *Service) Login(ctx context.Context, username, password, totpCode string) (string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !crypto.VerifyPassword(u.Password, password) {
		return "", ErrInvalidCredentials
	}
	if !u.Approved {
		return "", ErrNotApproved
	}
	if u.MFAEnabled() {
		if totpCode == "" || !crypto.ValidateTOTP(totpCode, *u.MFASecret) {
			return "", ErrInvalidMFACode
		}
	}

	return crypto.GenerateToken(s.secret, u.Username, u.Role, tokenTTL)
}
