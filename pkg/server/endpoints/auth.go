package endpoints

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/doodlesbykumbi/rbac-console/pkg/audit"
	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator"
	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn"
	"github.com/doodlesbykumbi/rbac-console/pkg/i18n"
	"github.com/doodlesbykumbi/rbac-console/pkg/server"
)

// RegisterAuthEndpoints registers the login and logout endpoints
func RegisterAuthEndpoints(s *server.Server) {
	registry := s.Authenticators

	// GET / - Send visitors to the console
	s.Router.Handle("/", http.RedirectHandler(grantListURL(), http.StatusFound)).Methods("GET")

	// GET /login - Login form
	s.Router.HandleFunc("/login", handleLoginPage(s)).Methods("GET")

	// POST /login - Authenticate with username and password
	s.Router.HandleFunc("/login", handleLogin(s, registry)).Methods("POST")

	// POST /logout - Drop the session
	s.Router.HandleFunc("/logout", handleLogout(s)).Methods("POST")
}

type loginContext struct {
	server.Page
	Username string `json:"username"`
	Next     string `json:"next"`
	Error    string `json:"error,omitempty"`
}

// safeNext keeps redirects on this host. Browsers drop tabs and newlines
// from URLs, so "/\t/host" would otherwise become "//host".
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return grantListURL()
	}
	if strings.IndexFunc(next, unicode.IsControl) >= 0 {
		return grantListURL()
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return grantListURL()
	}
	return next
}

func handleLoginPage(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.RenderHTML(w, r, http.StatusOK, server.PageLogin, loginContext{
			Page: s.NewPage(w, r, i18n.MsgLogin),
			Next: r.URL.Query().Get("next"),
		})
	}
}

func handleLogin(s *server.Server, registry *authenticator.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.PostForm.Get("username"))
		next := r.PostForm.Get("next")
		clientIP := server.ClientIP(r)

		auth, ok := registry.GetEnabled(authn.Name)
		if !ok {
			s.RenderError(w, r, http.StatusForbidden, i18n.MsgForbidden)
			return
		}

		user, err := auth.Authenticate(r.Context(), authenticator.AuthenticatorInput{
			Login:       username,
			Credentials: []byte(r.PostForm.Get("password")),
			ClientIP:    clientIP,
		})
		if err != nil {
			audit.Log(audit.AuthenticateEvent{
				Username:          username,
				ClientIP:          clientIP,
				AuthenticatorName: authn.Name,
				Success:           false,
				ErrorMessage:      err.Error(),
			})
			if !errors.Is(err, authenticator.ErrInvalidCredentials) && !errors.Is(err, authenticator.ErrInactiveUser) {
				s.RenderInternalError(w, r, err)
				return
			}
			page := s.NewPage(w, r, i18n.MsgLogin)
			s.RenderHTML(w, r, http.StatusUnauthorized, server.PageLogin, loginContext{
				Page:     page,
				Username: username,
				Next:     next,
				Error:    page.T(i18n.MsgInvalidCredentials),
			})
			return
		}

		if err := s.Sessions.Login(w, r, user.ID); err != nil {
			s.RenderInternalError(w, r, err)
			return
		}
		audit.Log(audit.AuthenticateEvent{
			Username:          user.Username,
			ClientIP:          clientIP,
			AuthenticatorName: authn.Name,
			Success:           true,
		})
		http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
	}
}

func handleLogout(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Sessions.Logout(w, r, s.Printer(r).Sprintf(i18n.MsgLoggedOut)); err != nil {
			s.RenderInternalError(w, r, err)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
