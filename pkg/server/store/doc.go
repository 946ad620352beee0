// Package store provides storage abstractions for the permission console.
//
// This package defines interfaces for database operations, allowing the
// server endpoints to be decoupled from the specific database implementation.
// The gorm subpackage implements them over PostgreSQL; handler tests use
// testify mocks.
//
// # Available Stores
//
//   - GroupModulePermissionsStore: grant listing and writes
//   - CatalogStore: groups, modules, permissions and menus
//   - UsersStore: user accounts
//   - AuthzStore: permission checks
//   - HealthStore: database connectivity
//
// CachedAuthzStore and InvalidatingGrantsStore decorate the authz and grant
// stores so that decisions are cached and cleared on every grant write.
//
// # Usage
//
//	grants := gormstore.NewGroupModulePermissionsStore(db)
//	grant, err := grants.Fetch(ctx, id)
//	if errors.Is(err, store.ErrNotFound) {
//	    // Handle not found
//	}
package store
