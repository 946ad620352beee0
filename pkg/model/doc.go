// Package model defines the database models for the permission console.
//
// This package contains GORM models that map to the PostgreSQL schema created
// by the migrations under db/migrations.
//
// # Core Models
//
//   - Group: a named set of users that permissions are granted to
//   - Module: a functional area of the application, with its own permissions
//   - Menu: navigation grouping for modules
//   - Permission: an atomic allowed action, identified by its codename
//   - User: a login principal, member of groups
//   - GroupModulePermission: the grant of a permission set to a group on a module
//
// # Database Schema
//
//   - groups, group_permissions, user_groups
//   - modules, module_permissions, menus
//   - permissions
//   - users
//   - group_module_permissions, group_module_permission_permissions
package model
