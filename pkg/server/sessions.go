package server

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

// SessionName is the name of the console session cookie
const SessionName = "rbac_console"

const sessionUserKey = "user_id"

// Sessions keeps the logged-in user and pending flash messages in a signed
// cookie.
type Sessions struct {
	store sessions.Store
}

// NewSessions creates a cookie session store signed with secret.
func NewSessions(secret string, secure bool, maxAge time.Duration) *Sessions {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: cs}
}

// NewSessionsWithStore wraps an existing gorilla store.
func NewSessionsWithStore(store sessions.Store) *Sessions {
	return &Sessions{store: store}
}

func (s *Sessions) session(r *http.Request) *sessions.Session {
	// An undecodable cookie yields a fresh session alongside the error.
	session, _ := s.store.Get(r, SessionName)
	return session
}

// UserID returns the id of the logged-in user.
func (s *Sessions) UserID(r *http.Request) (uint, bool) {
	id, ok := s.session(r).Values[sessionUserKey].(uint)
	return id, ok && id != 0
}

// Login records userID in the session.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, userID uint) error {
	session := s.session(r)
	session.Values[sessionUserKey] = userID
	return session.Save(r, w)
}

// Logout drops the logged-in user and queues msgs for the next page.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request, msgs ...string) error {
	session := s.session(r)
	delete(session.Values, sessionUserKey)
	for _, msg := range msgs {
		session.AddFlash(msg)
	}
	return session.Save(r, w)
}

// AddFlash queues messages for the next rendered page.
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, msgs ...string) error {
	session := s.session(r)
	for _, msg := range msgs {
		session.AddFlash(msg)
	}
	return session.Save(r, w)
}

// Flashes pops the queued messages.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) []string {
	session := s.session(r)
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	_ = session.Save(r, w)

	messages := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
