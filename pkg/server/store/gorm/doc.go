// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// Driver errors are translated onto store.ErrNotFound and store.ErrDuplicate
// so that callers never need to inspect PostgreSQL error codes.
package gorm
