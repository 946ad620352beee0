package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/doodlesbykumbi/rbac-console/pkg/i18n"
	"github.com/doodlesbykumbi/rbac-console/pkg/identity"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names under templates/.
const (
	PageGrantList   = "grant_list"
	PageGrantForm   = "grant_form"
	PageGrantDelete = "grant_delete"
	PageLogin       = "login"
	PageError       = "error"
)

var pageNames = []string{PageGrantList, PageGrantForm, PageGrantDelete, PageLogin, PageError}

// Renderer executes the console's HTML templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page against the shared layout.
func NewRenderer() (*Renderer, error) {
	md := goldmark.New()
	funcs := template.FuncMap{
		"markdown": func(source string) template.HTML {
			var buf bytes.Buffer
			if err := md.Convert([]byte(source), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(source))
			}
			// goldmark drops raw HTML unless WithUnsafe is set
			return template.HTML(buf.String())
		},
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render writes page name with data to w.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Page is the context shared by every rendered page.
type Page struct {
	Title    string             `json:"title"`
	Messages []string           `json:"messages,omitempty"`
	Lang     string             `json:"-"`
	User     *identity.Identity `json:"-"`
	printer  *message.Printer
}

// T translates key in the page's language.
func (p Page) T(key string) string {
	if p.printer == nil {
		return key
	}
	return p.printer.Sprintf(message.Key(key, key))
}

// Tf translates key and formats args into it.
func (p Page) Tf(key string, args ...interface{}) string {
	if p.printer == nil {
		return fmt.Sprintf(key, args...)
	}
	return p.printer.Sprintf(message.Key(key, key), args...)
}

// Printer returns the printer for the request's language.
func (s *Server) Printer(r *http.Request) *message.Printer {
	return s.Localizer.ForRequest(r)
}

// NewPage builds the shared page context and pops pending flash messages.
func (s *Server) NewPage(w http.ResponseWriter, r *http.Request, titleKey string) Page {
	tag := s.Localizer.Match(r.Header.Get("Accept-Language"))
	p := Page{
		Lang:     tag.String(),
		Messages: s.Sessions.Flashes(w, r),
		printer:  s.Localizer.Printer(tag),
	}
	p.Title = p.T(titleKey)
	if id, ok := identity.Get(r.Context()); ok {
		p.User = id
	}
	return p
}

// Respond writes data as JSON when the client asked for it and as the HTML
// page otherwise.
func (s *Server) Respond(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	if WantsJSON(r) {
		WriteJSON(w, status, data)
		return
	}
	s.RenderHTML(w, r, status, page, data)
}

// RenderHTML renders page into a buffer so template failures produce a clean 500.
func (s *Server) RenderHTML(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	var buf bytes.Buffer
	if err := s.Renderer.Render(&buf, page, data); err != nil {
		s.Logger.Error("failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ErrorPage is the context of the error page.
type ErrorPage struct {
	Page
	Status int `json:"status"`
}

// RenderError responds with a translated error message.
func (s *Server) RenderError(w http.ResponseWriter, r *http.Request, status int, msgKey string) {
	if WantsJSON(r) {
		WriteJSON(w, status, map[string]interface{}{"error": s.Printer(r).Sprintf(message.Key(msgKey, msgKey))})
		return
	}
	page := s.NewPage(w, r, msgKey)
	s.RenderHTML(w, r, status, PageError, ErrorPage{Page: page, Status: status})
}

// RenderInternalError logs err and responds with a generic 500.
func (s *Server) RenderInternalError(w http.ResponseWriter, r *http.Request, err error) {
	s.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	s.RenderError(w, r, http.StatusInternalServerError, i18n.MsgServerError)
}

// WantsJSON reports whether the client negotiated a JSON response, through
// the Accept header, ?format=json or a JSON request body.
func WantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// WriteJSON writes payload with status.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// ClientIP returns the host part of the request's remote address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
