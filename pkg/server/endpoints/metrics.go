package endpoints

import (
	"github.com/doodlesbykumbi/rbac-console/pkg/server"
)

// RegisterMetricsEndpoint exposes the Prometheus registry when metrics are on
func RegisterMetricsEndpoint(s *server.Server) {
	if s.Metrics == nil {
		return
	}

	// GET /metrics - Prometheus scrape endpoint (no auth required)
	s.Router.Handle("/metrics", s.Metrics.Handler()).Methods("GET")
}
