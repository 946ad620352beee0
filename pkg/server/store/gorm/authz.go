package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

// Ensure AuthzStore implements store.AuthzStore
var _ store.AuthzStore = (*AuthzStore)(nil)

// AuthzStore implements store.AuthzStore using GORM
type AuthzStore struct {
	db *gorm.DB
}

// NewAuthzStore creates a new AuthzStore
func NewAuthzStore(db *gorm.DB) *AuthzStore {
	return &AuthzStore{db: db}
}

// An inactive user holds nothing. An active superuser holds everything.
// Otherwise the codename must reach the user through a group, either as a
// group permission or inside one of the group's module grants.
const userHasPermissionQuery = `
SELECT EXISTS (
	SELECT 1 FROM users u
	WHERE u.id = @user AND u.is_active AND u.is_superuser
) OR EXISTS (
	SELECT 1 FROM users u
	JOIN user_groups ug ON ug.user_id = u.id
	JOIN group_permissions gp ON gp.group_id = ug.group_id
	JOIN permissions p ON p.id = gp.permission_id
	WHERE u.id = @user AND u.is_active AND p.codename = @codename
) OR EXISTS (
	SELECT 1 FROM users u
	JOIN user_groups ug ON ug.user_id = u.id
	JOIN group_module_permissions gmp ON gmp.group_id = ug.group_id
	JOIN group_module_permission_permissions gmpp ON gmpp.group_module_permission_id = gmp.id
	JOIN permissions p ON p.id = gmpp.permission_id
	WHERE u.id = @user AND u.is_active AND p.codename = @codename
)`

// UserHasPermission checks if a user holds a permission codename.
func (s *AuthzStore) UserHasPermission(ctx context.Context, userID uint, codename string) (bool, error) {
	var permitted bool
	err := s.db.WithContext(ctx).
		Raw(userHasPermissionQuery, map[string]interface{}{"user": userID, "codename": codename}).
		Scan(&permitted).Error
	return permitted, err
}
