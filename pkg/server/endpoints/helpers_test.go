package endpoints

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn"
	"github.com/doodlesbykumbi/rbac-console/pkg/config"
	"github.com/doodlesbykumbi/rbac-console/pkg/identity"
	"github.com/doodlesbykumbi/rbac-console/pkg/metrics"
	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	"github.com/doodlesbykumbi/rbac-console/pkg/server"
)

var (
	groupOps     = model.Group{ID: 1, Name: "Ops"}
	groupFinance = model.Group{ID: 2, Name: "Finance"}

	permView   = model.Permission{ID: 10, Name: "Can view invoice", Codename: "view_invoice"}
	permAdd    = model.Permission{ID: 11, Name: "Can add invoice", Codename: "add_invoice"}
	permExport = model.Permission{ID: 12, Name: "Can export report", Codename: "export_report"}

	moduleBilling = model.Module{ID: 100, Name: "Billing", Description: "Invoices and **payments**", Permissions: []model.Permission{permView, permAdd}}
	moduleReports = model.Module{ID: 101, Name: "Reports", Permissions: []model.Permission{permExport}}

	menuFinance = model.Menu{ID: 7, Name: "Finance"}
)

func testCatalog() *FakeCatalogStore {
	return &FakeCatalogStore{
		Groups:      []model.Group{groupFinance, groupOps},
		Modules:     []model.Module{moduleBilling, moduleReports},
		Permissions: []model.Permission{permAdd, permExport, permView},
		Menus:       []model.Menu{menuFinance},
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
	cfg.JWTSecret = "jwt-secret"
	cfg.DefaultLanguage = "en"
	cfg.PageSize = 2
	return cfg
}

type testServer struct {
	*server.Server
	grants *MockGrantsStore
	authz  *MockAuthzStore
	users  *MockUsersStore
	health *MockHealthStore
}

// newTestServer builds a server over mock stores with every endpoint registered
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s, err := server.New(testConfig(), nil, metrics.New())
	require.NoError(t, err)

	ts := &testServer{
		Server: s,
		grants: NewMockGrantsStore(),
		authz:  &MockAuthzStore{},
		users:  &MockUsersStore{},
		health: &MockHealthStore{},
	}
	s.GrantsStore = ts.grants
	s.CatalogStore = testCatalog()
	s.AuthzStore = ts.authz
	s.UsersStore = ts.users
	s.HealthStore = ts.health

	s.Authenticators.Register(authn.New(ts.users))
	require.NoError(t, s.Authenticators.Enable(authn.Name))

	RegisterAll(s)
	return ts
}

// loginAs stubs a session for an active user and returns its cookie
func (ts *testServer) loginAs(t *testing.T, user *model.User) *http.Cookie {
	t.Helper()
	ts.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	w := httptest.NewRecorder()
	require.NoError(t, ts.Sessions.Login(w, httptest.NewRequest("GET", "/", nil), user.ID))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func (ts *testServer) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

// follow replays the cookies set by a response on a new GET request
func (ts *testServer) follow(w *httptest.ResponseRecorder, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	// the response cookie supersedes the one we came in with
	if len(w.Result().Cookies()) == 0 {
		for _, c := range cookies {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	ts.Router.ServeHTTP(rec, req)
	return rec
}

func formRequest(method, path string, values url.Values) *http.Request {
	var body io.Reader
	if values != nil {
		body = strings.NewReader(values.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

// requestWithIdentity builds a request carrying an authenticated identity
func requestWithIdentity(method, path string, body io.Reader, username string) *http.Request {
	req := httptest.NewRequest(method, path, body)
	return req.WithContext(identity.Set(req.Context(), identity.New(1, username, false)))
}

func withMuxVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}
