// Package authn implements username and password authentication.
package authn

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator"
	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

// Name is the registry name of the password authenticator
const Name = "password"

// MinPasswordLength is enforced by HashPassword
const MinPasswordLength = 8

// Store abstracts the user lookups needed by the authenticator
type Store interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// Authenticator implements password authentication against bcrypt hashes
type Authenticator struct {
	store Store
	// compared when the user doesn't exist so that response time doesn't
	// reveal which usernames are taken
	dummyHash []byte
}

// New creates a new password authenticator
func New(s Store) *Authenticator {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return &Authenticator{store: s, dummyHash: dummy}
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return Name
}

// Authenticate checks the password in input.Credentials for input.Login
func (a *Authenticator) Authenticate(ctx context.Context, input authenticator.AuthenticatorInput) (*model.User, error) {
	if input.Login == "" || len(input.Credentials) == 0 {
		return nil, authenticator.ErrInvalidCredentials
	}

	user, err := a.store.FindByUsername(ctx, input.Login)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, input.Credentials)
		return nil, authenticator.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), input.Credentials); err != nil {
		return nil, authenticator.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, authenticator.ErrInactiveUser
	}
	return user, nil
}

// Status always succeeds; the authenticator has no external dependencies
func (a *Authenticator) Status(ctx context.Context) error {
	return nil
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
