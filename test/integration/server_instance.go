//go:build integration

package integration

import (
	"fmt"
	"net/http/httptest"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rbac-console/pkg/audit"
	"github.com/doodlesbykumbi/rbac-console/pkg/config"
	"github.com/doodlesbykumbi/rbac-console/pkg/metrics"
	"github.com/doodlesbykumbi/rbac-console/pkg/server"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/endpoints"
)

const (
	testSessionSecret = "integration-session-secret-0123456789"
	testJWTSecret     = "integration-jwt-secret"
)

// ServerConfig holds configuration for a test console instance
type ServerConfig struct {
	Authenticators []string
	Language       string
}

// DefaultServerConfig enables both authenticators and English messages
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Authenticators: []string{"password", "jwt"},
		Language:       "en",
	}
}

// ServerInstance represents a running console for the test suite
type ServerInstance struct {
	Server    *server.Server
	ServerURL string
	Config    *config.Config
	http      *httptest.Server
}

// StartServer builds a console over database and serves it on a loopback port.
// The authorization cache is disabled so that rows written by the steps are
// visible to the next request.
func StartServer(database *gorm.DB, sc ServerConfig) (*ServerInstance, error) {
	cfg := config.Default()
	cfg.SessionSecret = testSessionSecret
	cfg.JWTSecret = testJWTSecret
	cfg.CacheBackend = "none"
	cfg.DefaultLanguage = sc.Language
	cfg.Authenticators = sc.Authenticators
	cfg.AuditEnabled = false
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateSecrets(); err != nil {
		return nil, err
	}
	audit.SetEnabled(cfg.AuditEnabled)

	s, err := server.NewServer(cfg, database, nil, metrics.New())
	if err != nil {
		return nil, fmt.Errorf("failed to build server: %w", err)
	}
	endpoints.RegisterAll(s)

	ts := httptest.NewServer(s.Handler())
	return &ServerInstance{
		Server:    s,
		ServerURL: ts.URL,
		Config:    cfg,
		http:      ts,
	}, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.http != nil {
		si.http.Close()
	}
}
