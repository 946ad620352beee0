package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/rbac-console/pkg/i18n"
	"github.com/doodlesbykumbi/rbac-console/pkg/server"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/middleware"
)

// RegisterAll registers the middleware chain and every endpoint on the server
func RegisterAll(s *server.Server) {
	s.Router.Use(middleware.RequestLogger(s.Logger, s.Metrics))
	s.Router.Use(middleware.NewIdentifier(s).Middleware)

	RegisterGroupModulePermissionEndpoints(s)
	RegisterAuthEndpoints(s)
	RegisterStatusEndpoints(s)
	RegisterMetricsEndpoint(s)

	s.Router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.RenderError(w, r, http.StatusNotFound, i18n.MsgNotFound)
	})
}
