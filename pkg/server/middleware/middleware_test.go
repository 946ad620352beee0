package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator"
	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn_jwt"
	"github.com/doodlesbykumbi/rbac-console/pkg/identity"
	"github.com/doodlesbykumbi/rbac-console/pkg/logging"
	"github.com/doodlesbykumbi/rbac-console/pkg/metrics"
	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	"github.com/doodlesbykumbi/rbac-console/pkg/server"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

type mockUsersStore struct {
	mock.Mock
}

func (m *mockUsersStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUsersStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUsersStore) Create(ctx context.Context, user *model.User, groupNames []string) error {
	return m.Called(ctx, user, groupNames).Error(0)
}

func (m *mockUsersStore) SetPassword(ctx context.Context, username string, passwordHash string) error {
	return m.Called(ctx, username, passwordHash).Error(0)
}

type mockAuthzStore struct {
	mock.Mock
}

func (m *mockAuthzStore) UserHasPermission(ctx context.Context, userID uint, codename string) (bool, error) {
	args := m.Called(ctx, userID, codename)
	return args.Bool(0), args.Error(1)
}

// captureIdentity records the identity seen by the wrapped handler
func captureIdentity(got **identity.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := identity.Get(r.Context()); ok {
			*got = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

// sessionCookie logs userID in and returns the resulting cookie
func sessionCookie(t *testing.T, sessions *server.Sessions, userID uint) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, sessions.Login(w, httptest.NewRequest("GET", "/", nil), userID))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func newIdentifier(users *mockUsersStore, jwtEnabled bool) (*Identifier, *authn_jwt.Authenticator) {
	registry := authenticator.NewRegistry()
	jwtAuth := authn_jwt.New(users, authn_jwt.Config{Secret: []byte("test-secret"), TTL: time.Hour})
	registry.Register(jwtAuth)
	if jwtEnabled {
		_ = registry.Enable(authn_jwt.Name)
	}
	return &Identifier{
		Sessions: server.NewSessions("session-secret", false, time.Hour),
		Registry: registry,
		Users:    users,
	}, jwtAuth
}

func TestIdentifier_Anonymous(t *testing.T) {
	i, _ := newIdentifier(&mockUsersStore{}, true)

	var got *identity.Identity
	w := httptest.NewRecorder()
	i.Middleware(captureIdentity(&got)).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, got)
}

func TestIdentifier_Session(t *testing.T) {
	t.Run("active user", func(t *testing.T) {
		users := &mockUsersStore{}
		users.On("FindByID", mock.Anything, uint(7)).Return(&model.User{ID: 7, Username: "alice", IsActive: true}, nil)
		i, _ := newIdentifier(users, false)

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(sessionCookie(t, i.Sessions, 7))

		var got *identity.Identity
		w := httptest.NewRecorder()
		i.Middleware(captureIdentity(&got)).ServeHTTP(w, req)

		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "password", got.Authenticator)
		assert.False(t, got.IsAPIClient())
	})

	t.Run("inactive user is logged out", func(t *testing.T) {
		users := &mockUsersStore{}
		users.On("FindByID", mock.Anything, uint(8)).Return(&model.User{ID: 8, Username: "carol", IsActive: false}, nil)
		i, _ := newIdentifier(users, false)

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(sessionCookie(t, i.Sessions, 8))

		var got *identity.Identity
		w := httptest.NewRecorder()
		i.Middleware(captureIdentity(&got)).ServeHTTP(w, req)

		assert.Nil(t, got)
		assert.NotEmpty(t, w.Result().Cookies(), "session cookie should be rewritten")
	})

	t.Run("deleted user", func(t *testing.T) {
		users := &mockUsersStore{}
		users.On("FindByID", mock.Anything, uint(9)).Return(nil, store.ErrNotFound)
		i, _ := newIdentifier(users, false)

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(sessionCookie(t, i.Sessions, 9))

		var got *identity.Identity
		w := httptest.NewRecorder()
		i.Middleware(captureIdentity(&got)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, got)
	})
}

func TestIdentifier_Bearer(t *testing.T) {
	users := &mockUsersStore{}
	users.On("FindByUsername", mock.Anything, "svc-deploy").Return(&model.User{ID: 5, Username: "svc-deploy", IsActive: true}, nil)

	t.Run("valid token", func(t *testing.T) {
		i, jwtAuth := newIdentifier(users, true)
		token, _, err := jwtAuth.Issue("svc-deploy")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		var got *identity.Identity
		w := httptest.NewRecorder()
		i.Middleware(captureIdentity(&got)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got)
		assert.Equal(t, uint(5), got.UserID)
		assert.True(t, got.IsAPIClient())
	})

	tests := []struct {
		name       string
		header     string
		jwtEnabled bool
	}{
		{"malformed header", "Token token=abc", true},
		{"invalid token", "Bearer not-a-jwt", true},
		{"jwt disabled", "Bearer abc.def.ghi", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, _ := newIdentifier(users, tt.jwtEnabled)

			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", tt.header)

			var got *identity.Identity
			w := httptest.NewRecorder()
			i.Middleware(captureIdentity(&got)).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Nil(t, got)
		})
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withIdentity(req *http.Request, userID uint, username string) *http.Request {
	return req.WithContext(identity.Set(req.Context(), identity.New(userID, username, false)))
}

func TestAuthorizer_Require(t *testing.T) {
	const codename = "view_groupmodulepermission"

	t.Run("anonymous HTML client is redirected to login", func(t *testing.T) {
		a := &Authorizer{Authz: &mockAuthzStore{}}
		w := httptest.NewRecorder()
		a.Require(codename)(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/security/group-module-permissions/?q=ops", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?next=%2Fsecurity%2Fgroup-module-permissions%2F%3Fq%3Dops", w.Header().Get("Location"))
	})

	t.Run("anonymous JSON client gets 401", func(t *testing.T) {
		a := &Authorizer{Authz: &mockAuthzStore{}}
		req := httptest.NewRequest("GET", "/security/group-module-permissions/", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		a.Require(codename)(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("allowed", func(t *testing.T) {
		authz := &mockAuthzStore{}
		authz.On("UserHasPermission", mock.Anything, uint(1), codename).Return(true, nil)
		m := metrics.New()
		a := &Authorizer{Authz: authz, Metrics: m}

		w := httptest.NewRecorder()
		a.Require(codename)(okHandler()).ServeHTTP(w, withIdentity(httptest.NewRequest("GET", "/", nil), 1, "alice"))

		assert.Equal(t, http.StatusOK, w.Code)
		authz.AssertExpectations(t)
	})

	t.Run("denied JSON client gets 403", func(t *testing.T) {
		authz := &mockAuthzStore{}
		authz.On("UserHasPermission", mock.Anything, uint(2), codename).Return(false, nil)
		a := &Authorizer{Authz: authz}

		req := withIdentity(httptest.NewRequest("GET", "/?format=json", nil), 2, "bob")
		w := httptest.NewRecorder()
		a.Require(codename)(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Forbidden")
	})

	t.Run("denied HTML client gets the denied page", func(t *testing.T) {
		authz := &mockAuthzStore{}
		authz.On("UserHasPermission", mock.Anything, uint(2), codename).Return(false, nil)
		a := &Authorizer{
			Authz: authz,
			Denied: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte("denied page"))
			}),
		}

		w := httptest.NewRecorder()
		a.Require(codename)(okHandler()).ServeHTTP(w, withIdentity(httptest.NewRequest("GET", "/", nil), 2, "bob"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "denied page", w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		authz := &mockAuthzStore{}
		authz.On("UserHasPermission", mock.Anything, uint(3), codename).Return(false, errors.New("connection refused"))
		a := &Authorizer{Authz: authz}

		w := httptest.NewRecorder()
		a.Require(codename)(okHandler()).ServeHTTP(w, withIdentity(httptest.NewRequest("GET", "/", nil), 3, "dave"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRequestLogger(t *testing.T) {
	m := metrics.New()
	router := mux.NewRouter()
	router.Use(RequestLogger(nil, m))

	var sawLogger bool
	router.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		sawLogger = logging.FromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("generates a request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/items/42", nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
		assert.True(t, sawLogger)
	})

	t.Run("keeps the caller's request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/items/43", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	})

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var routes []string
	for _, family := range families {
		if family.GetName() != "rbac_console_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "route" {
					routes = append(routes, label.GetValue())
				}
			}
			assert.Equal(t, float64(2), metric.GetCounter().GetValue())
		}
	}
	assert.Equal(t, []string{"/items/{id}"}, routes)
}
