package store

import (
	"context"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
)

// CatalogStore exposes the reference data a grant is built from:
// groups, modules, permissions and menus.
type CatalogStore interface {
	ListGroups(ctx context.Context) ([]model.Group, error)
	// ListModules returns every module with its own permissions loaded.
	ListModules(ctx context.Context) ([]model.Module, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	ListMenus(ctx context.Context) ([]model.Menu, error)

	// The Find methods return the rows matching ids; unknown ids are skipped.
	FindGroups(ctx context.Context, ids []uint) ([]model.Group, error)
	FindModules(ctx context.Context, ids []uint) ([]model.Module, error)
	FindPermissions(ctx context.Context, ids []uint) ([]model.Permission, error)
	FindMenus(ctx context.Context, ids []uint) ([]model.Menu, error)
}
