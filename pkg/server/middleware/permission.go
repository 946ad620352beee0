package middleware

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/rbac-console/pkg/audit"
	"github.com/doodlesbykumbi/rbac-console/pkg/identity"
	"github.com/doodlesbykumbi/rbac-console/pkg/metrics"
	"github.com/doodlesbykumbi/rbac-console/pkg/server"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

// DefaultLoginPath is where anonymous HTML clients are redirected
const DefaultLoginPath = "/login"

// Authorizer guards routes with a permission codename.
type Authorizer struct {
	Authz     store.AuthzStore
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	LoginPath string

	// Denied renders the 403 page for HTML clients. JSON clients, and all
	// clients when Denied is nil, get a JSON error.
	Denied http.Handler
}

// Require returns a middleware that lets the request through only when the
// caller holds codename.
func (a *Authorizer) Require(codename string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identity.Get(r.Context())
			if !ok {
				if server.WantsJSON(r) {
					server.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
					return
				}
				http.Redirect(w, r, a.loginURL(r), http.StatusFound)
				return
			}

			allowed, err := a.Authz.UserHasPermission(r.Context(), id.UserID, codename)
			if err != nil {
				a.logger().Error("permission check failed",
					zap.String("username", id.Username),
					zap.String("codename", codename),
					zap.Error(err),
				)
				server.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Permission check failed"})
				return
			}
			a.Metrics.RecordAuthzCheck(codename, allowed)

			if !allowed {
				audit.Log(audit.CheckEvent{
					Username: id.Username,
					ClientIP: server.ClientIP(r),
					Codename: codename,
					Path:     r.URL.Path,
					Allowed:  false,
				})
				if a.Denied != nil && !server.WantsJSON(r) {
					a.Denied.ServeHTTP(w, r)
					return
				}
				server.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authorizer) loginURL(r *http.Request) string {
	loginPath := a.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
}

func (a *Authorizer) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
