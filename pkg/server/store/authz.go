package store

import "context"

// AuthzStore abstracts authorization checks
type AuthzStore interface {
	// UserHasPermission reports whether the user holds the permission codename,
	// directly as an active superuser or through any of their groups.
	UserHasPermission(ctx context.Context, userID uint, codename string) (bool, error)
}
