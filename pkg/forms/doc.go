// Package forms decodes and validates the group/module permission form.
//
// A form is built from a request body (urlencoded or JSON) or from an
// existing grant, validated against the catalog of groups, modules,
// permissions and menus, and then exposes either the cleaned rows or a
// map of per-field error messages. Record-level errors use the
// NonFieldErrors key.
package forms
