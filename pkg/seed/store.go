package seed

import (
	"context"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
)

// Link is a many-to-many join table rewritten by a seed load.
type Link struct {
	Table        string
	OwnerColumn  string
	TargetColumn string
}

var (
	ModulePermissions = Link{Table: "module_permissions", OwnerColumn: "module_id", TargetColumn: "permission_id"}
	GroupPermissions  = Link{Table: "group_permissions", OwnerColumn: "group_id", TargetColumn: "permission_id"}
	UserGroups        = Link{Table: "user_groups", OwnerColumn: "user_id", TargetColumn: "group_id"}
	GrantPermissions  = Link{
		Table:        "group_module_permission_permissions",
		OwnerColumn:  "group_module_permission_id",
		TargetColumn: "permission_id",
	}
)

// Store abstracts the writes performed by a seed load.
// This allows the loader to work with different backends (e.g., database, mock for testing).
type Store interface {
	// Transaction wraps operations in a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Transaction(ctx context.Context, fn func(Store) error) error

	// Lookup maps natural keys of kind to ids. Unknown keys are absent from the result.
	Lookup(ctx context.Context, kind Kind, keys []string) (map[string]uint, error)

	// The Upsert methods insert the row or update it in place, keyed by
	// codename, name or username, and return its id.
	UpsertPermission(ctx context.Context, p model.Permission) (uint, error)
	UpsertMenu(ctx context.Context, m model.Menu) (uint, error)
	UpsertModule(ctx context.Context, m model.Module) (uint, error)
	UpsertGroup(ctx context.Context, name string) (uint, error)
	// UpsertUser never overwrites the password hash of an existing user.
	UpsertUser(ctx context.Context, u model.User) (uint, error)
	UpsertGrant(ctx context.Context, groupID, moduleID uint) (uint, error)

	// ReplaceLinks makes targetIDs the complete set linked to ownerID.
	ReplaceLinks(ctx context.Context, link Link, ownerID uint, targetIDs []uint) error
}
