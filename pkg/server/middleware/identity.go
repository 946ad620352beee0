package middleware

import (
	"errors"
	"net"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/rbac-console/pkg/audit"
	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator"
	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn"
	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn_jwt"
	"github.com/doodlesbykumbi/rbac-console/pkg/identity"
	"github.com/doodlesbykumbi/rbac-console/pkg/server"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

var bearerRegex = regexp.MustCompile(`^Bearer\s+(\S+)$`)

// Identifier attaches the caller's identity to the request context. Requests
// without credentials pass through anonymously; a bad bearer token is
// rejected with 401.
type Identifier struct {
	Sessions *server.Sessions
	Registry *authenticator.Registry
	Users    store.UsersStore
	Logger   *zap.Logger
}

// NewIdentifier creates the identity middleware for s
func NewIdentifier(s *server.Server) *Identifier {
	return &Identifier{
		Sessions: s.Sessions,
		Registry: s.Authenticators,
		Users:    s.UsersStore,
		Logger:   s.Logger,
	}
}

// Middleware returns an HTTP middleware that resolves the caller
func (i *Identifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := server.ClientIP(r)

		if header := r.Header.Get("Authorization"); header != "" {
			matches := bearerRegex.FindStringSubmatch(header)
			if len(matches) != 2 {
				server.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Malformed authorization header"})
				return
			}

			auth, ok := i.Registry.GetEnabled(authn_jwt.Name)
			if !ok {
				server.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Bearer authentication is disabled"})
				return
			}

			user, err := auth.Authenticate(r.Context(), authenticator.AuthenticatorInput{
				Credentials: []byte(matches[1]),
				ClientIP:    clientIP,
			})
			if err != nil {
				audit.Log(audit.AuthenticateEvent{
					ClientIP:          clientIP,
					AuthenticatorName: authn_jwt.Name,
					Success:           false,
					ErrorMessage:      err.Error(),
				})
				server.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
				return
			}

			id := identity.New(user.ID, user.Username, user.IsSuperuser).
				WithAuthenticator(authn_jwt.Name).
				WithRemoteIP(net.ParseIP(clientIP))
			next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
			return
		}

		if userID, ok := i.Sessions.UserID(r); ok {
			user, err := i.Users.FindByID(r.Context(), userID)
			switch {
			case err == nil && user.IsActive:
				id := identity.New(user.ID, user.Username, user.IsSuperuser).
					WithAuthenticator(authn.Name).
					WithRemoteIP(net.ParseIP(clientIP))
				r = r.WithContext(identity.Set(r.Context(), id))
			case err == nil || errors.Is(err, store.ErrNotFound):
				// deactivated or deleted since login
				if err := i.Sessions.Logout(w, r); err != nil {
					i.logger().Warn("failed to drop stale session", zap.Uint("user_id", userID), zap.Error(err))
				}
			default:
				i.logger().Warn("failed to load session user", zap.Uint("user_id", userID), zap.Error(err))
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (i *Identifier) logger() *zap.Logger {
	if i.Logger == nil {
		return zap.NewNop()
	}
	return i.Logger
}
