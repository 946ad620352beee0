package store

import (
	"context"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
)

// UsersStore abstracts user account lookups and writes
type UsersStore interface {
	// FindByUsername returns ErrNotFound if no user has the username.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)

	// Create inserts a user and links it to the named groups.
	// Returns ErrDuplicate if the username is taken.
	Create(ctx context.Context, user *model.User, groupNames []string) error

	// SetPassword replaces the stored bcrypt hash.
	SetPassword(ctx context.Context, username string, passwordHash string) error
}
