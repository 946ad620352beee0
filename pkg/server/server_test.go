package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/doodlesbykumbi/rbac-console/pkg/config"
	"github.com/doodlesbykumbi/rbac-console/pkg/i18n"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
	s, err := New(cfg, nil, nil)
	require.NoError(t, err)
	return s
}

func TestNew_RejectsUnsupportedLanguage(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultLanguage = "fr"

	_, err := New(cfg, nil, nil)
	assert.Error(t, err)
}

func TestSessions_LoginAndFlashes(t *testing.T) {
	sessions := NewSessions("0123456789abcdef0123456789abcdef", false, time.Hour)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	require.NoError(t, sessions.Login(w, r, 42))
	require.NoError(t, sessions.AddFlash(w, r, "first", "second"))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	cookie := cookies[len(cookies)-1]
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	next := httptest.NewRequest("GET", "/", nil)
	next.AddCookie(cookie)

	id, ok := sessions.UserID(next)
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	w = httptest.NewRecorder()
	assert.Equal(t, []string{"first", "second"}, sessions.Flashes(w, next))
	assert.Empty(t, sessions.Flashes(w, next), "flashes are shown once")
}

func TestSessions_TamperedCookie(t *testing.T) {
	sessions := NewSessions("0123456789abcdef0123456789abcdef", false, time.Hour)

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionName, Value: "forged"})

	_, ok := sessions.UserID(r)
	assert.False(t, ok)
}

func TestSessions_Logout(t *testing.T) {
	sessions := NewSessions("0123456789abcdef0123456789abcdef", false, time.Hour)

	w := httptest.NewRecorder()
	require.NoError(t, sessions.Login(w, httptest.NewRequest("GET", "/", nil), 42))

	r := httptest.NewRequest("POST", "/logout", nil)
	r.AddCookie(w.Result().Cookies()[0])
	w = httptest.NewRecorder()
	require.NoError(t, sessions.Logout(w, r, "bye"))

	next := httptest.NewRequest("GET", "/", nil)
	next.AddCookie(w.Result().Cookies()[0])
	_, ok := sessions.UserID(next)
	assert.False(t, ok)
	assert.Equal(t, []string{"bye"}, sessions.Flashes(httptest.NewRecorder(), next))
}

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, PageError, ErrorPage{Page: Page{Title: "Oops"}, Status: 500})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<title>Oops</title>")

	assert.Error(t, r.Render(&buf, "missing", nil))
}

func TestPage_T(t *testing.T) {
	localizer, err := i18n.New("es")
	require.NoError(t, err)

	p := Page{printer: localizer.Printer(language.Spanish)}
	assert.Equal(t, "Volver", p.T(i18n.MsgBack))
	assert.Equal(t, "Página 2 de 5", p.Tf(i18n.MsgPageOf, 2, 5))

	var bare Page
	assert.Equal(t, "Back", bare.T(i18n.MsgBack))
	assert.Equal(t, "Page 1 of 3", bare.Tf(i18n.MsgPageOf, 1, 3))
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		accept      string
		contentType string
		want        bool
	}{
		{"plain browser request", "/", "text/html,application/xhtml+xml", "", false},
		{"accept header", "/", "application/json", "", true},
		{"format parameter", "/?format=json", "", "", true},
		{"JSON body", "/", "", "application/json; charset=utf-8", true},
		{"form body", "/", "", "application/x-www-form-urlencoded", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			r.Header.Set("Accept", tt.accept)
			r.Header.Set("Content-Type", tt.contentType)
			assert.Equal(t, tt.want, WantsJSON(r))
		})
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:54321"
	assert.Equal(t, "10.1.2.3", ClientIP(r))

	r.RemoteAddr = "10.1.2.3"
	assert.Equal(t, "10.1.2.3", ClientIP(r))
}

func TestRenderError(t *testing.T) {
	s := testServer(t)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Accept-Language", "es")
	w := httptest.NewRecorder()
	s.RenderError(w, r, http.StatusForbidden, i18n.MsgForbidden)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "No tiene permisos para acceder a esta página.")
	assert.Contains(t, w.Body.String(), `<html lang="es">`)
}

func TestHandler_RecoversPanics(t *testing.T) {
	s := testServer(t)
	s.Router.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
