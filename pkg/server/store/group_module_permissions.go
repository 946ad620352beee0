package store

import (
	"context"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
)

// GrantFilter narrows a grant listing.
type GrantFilter struct {
	// Query is matched case-insensitively against the group name or the module name.
	Query  string
	Limit  int
	Offset int
}

// GroupModulePermissionsStore abstracts persistence of group/module grants
type GroupModulePermissionsStore interface {
	// List returns one page of grants ordered by group name, module name and id,
	// with Group, Module and Permissions loaded, and the total number of matches.
	List(ctx context.Context, filter GrantFilter) ([]model.GroupModulePermission, int64, error)

	// Fetch loads a single grant with its relations.
	// Returns ErrNotFound if the grant doesn't exist.
	Fetch(ctx context.Context, id uint) (*model.GroupModulePermission, error)

	// Create inserts one grant per module for the group, each carrying the same
	// permission set, in a single transaction.
	// Returns ErrDuplicate if any (group, module) pair is already granted.
	Create(ctx context.Context, groupID uint, moduleIDs []uint, permissionIDs []uint) ([]model.GroupModulePermission, error)

	// Update moves a grant to (groupID, moduleID) and replaces its permission set.
	// Returns ErrNotFound or ErrDuplicate.
	Update(ctx context.Context, id uint, groupID uint, moduleID uint, permissionIDs []uint) (*model.GroupModulePermission, error)

	// Delete removes a grant and its permission links.
	// Returns ErrNotFound if the grant doesn't exist.
	Delete(ctx context.Context, id uint) error
}
