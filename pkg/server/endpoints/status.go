package endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator"
	"github.com/doodlesbykumbi/rbac-console/pkg/server"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

// healthCheckTimeout bounds the database probe of /status
const healthCheckTimeout = 2 * time.Second

// AuthenticatorsResponse lists installed and enabled authenticators
type AuthenticatorsResponse struct {
	Installed []string `json:"installed"`
	Enabled   []string `json:"enabled"`
}

// StatusResponse represents the response from /status
type StatusResponse struct {
	Status         string                 `json:"status"`
	Database       string                 `json:"database"`
	Authenticators AuthenticatorsResponse `json:"authenticators"`
}

// RegisterStatusEndpoints registers the status endpoint
func RegisterStatusEndpoints(s *server.Server) {
	// GET /status - Health check (no auth required)
	s.Router.HandleFunc("/status", handleStatus(s.HealthStore, s.Authenticators)).Methods("GET")
}

func handleStatus(healthStore store.HealthStore, registry *authenticator.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		response := StatusResponse{
			Status:   "ok",
			Database: "ok",
			Authenticators: AuthenticatorsResponse{
				Installed: registry.Installed(),
				Enabled:   registry.Enabled(),
			},
		}

		code := http.StatusOK
		if err := healthStore.CheckConnectivity(ctx); err != nil {
			response.Status = "error"
			response.Database = err.Error()
			code = http.StatusServiceUnavailable
		}
		respondWithJSON(w, code, response)
	}
}
