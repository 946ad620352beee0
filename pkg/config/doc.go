// Package config provides configuration management for the permission console.
//
// Configuration is resolved in three layers, later layers winning:
//
//   - Built-in defaults
//   - The YAML file $RBAC_CONFIG_PATH/rbac.yml (default /etc/rbac-console/rbac.yml)
//   - Environment variables
//
// The source of every attribute is tracked so that
// "rbacctl configuration show" can report where a value came from.
//
// # Key Configuration Options
//
//   - DATABASE_URL: Database connection
//   - PORT / BIND_ADDRESS: Server listen address
//   - RBAC_SESSION_SECRET: Session cookie signing key
//   - RBAC_JWT_SECRET: API token signing key
//   - RBAC_CACHE_BACKEND: none, memory or redis
//   - RBAC_LOG_LEVEL: Logging verbosity
package config
