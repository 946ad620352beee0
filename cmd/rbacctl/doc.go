// Command rbacctl runs the group/module permission console.
//
// The console is an administrative web application in which operators
// assign a set of permissions to a user group on an application module.
//
// # Architecture
//
//   - pkg/server: HTTP server, sessions and HTML rendering
//   - pkg/server/endpoints: page and API handlers
//   - pkg/server/middleware: identity, permission checks and request logging
//   - pkg/server/store: storage interfaces and their GORM implementations
//   - pkg/forms: form decoding and validation
//   - pkg/seed: YAML reference data loader
//   - pkg/authenticator: password and JWT authenticators
//   - pkg/audit: RFC5424 audit log
//   - pkg/config: configuration management
//
// # Quick Start
//
//	export DATABASE_URL=postgres://postgres@localhost/rbac?sslmode=disable
//	export RBAC_SESSION_SECRET=$(openssl rand -hex 32)
//	export RBAC_JWT_SECRET=$(openssl rand -hex 32)
//
//	# Create the schema
//	rbacctl db migrate
//
//	# Load groups, modules and permissions
//	rbacctl seed load seed.yml
//
//	# Create an administrator
//	rbacctl user create admin --superuser
//
//	# Start the server
//	rbacctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - RBAC_CONFIG_PATH: directory holding rbac.yml
//   - RBAC_SESSION_SECRET: session cookie signing key (32 bytes or more)
//   - RBAC_JWT_SECRET: API token signing key
//   - RBAC_AUTHENTICATORS: comma-separated list of enabled authenticators
//   - RBAC_LOG_LEVEL: log level (debug, info, warn, error)
//   - AUDIT_DATABASE_URL: database receiving audit messages
//   - PORT: server port (default: 8000)
package main
