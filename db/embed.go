// Package db holds the SQL migrations, embedded for production builds.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
