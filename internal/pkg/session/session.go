// Package session wraps gorilla/sessions with the login state and flash
// messages used by the page handlers.
package session

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/gob"
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	keyUserID    = "user_id"
	keyCSRFToken = "csrf_token"

	csrfTokenBytes = 32
)

// Flash categories rendered by the layout template.
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

// Flash is a one-time notice carried to the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// Options configures the session cookie.
type Options struct {
	Name     string
	MaxAge   int
	Secure   bool
	HTTPOnly bool
}

// Manager reads and writes the signed session cookie.
type Manager struct {
	store  sessions.Store
	name   string
	maxAge int
}

// NewManager creates a Manager backed by a signed cookie store.
func NewManager(secret []byte, opts Options) *Manager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	name := opts.Name
	if name == "" {
		name = "oneday-session"
	}
	return &Manager{store: store, name: name, maxAge: opts.MaxAge}
}

func (m *Manager) get(r *http.Request) *sessions.Session {
	// A tampered or stale cookie yields a fresh session, which is what we want.
	s, _ := m.store.Get(r, m.name)
	return s
}

// UserID returns the logged-in user's id stored in the session.
func (m *Manager) UserID(r *http.Request) (int64, bool) {
	id, ok := m.get(r).Values[keyUserID].(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// Login records userID as the authenticated principal.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	s := m.get(r)
	s.Values[keyUserID] = userID
	return s.Save(r, w)
}

// Clear drops every value in the session and expires the cookie. The session stays
// usable for the rest of the request, so a later flash is written to a fresh cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	for k := range s.Values {
		delete(s.Values, k)
	}
	s.Options.MaxAge = -1
	err := s.Save(r, w)
	s.Options.MaxAge = m.maxAge
	return err
}

// CSRFToken returns the form token bound to the session, minting and saving one
// on first use.
func (m *Manager) CSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	s := m.get(r)
	if token, ok := s.Values[keyCSRFToken].(string); ok && token != "" {
		return token, nil
	}
	key := securecookie.GenerateRandomKey(csrfTokenBytes)
	if key == nil {
		return "", errors.New("session: failed to generate csrf token")
	}
	token := base64.RawURLEncoding.EncodeToString(key)
	s.Values[keyCSRFToken] = token
	return token, s.Save(r, w)
}

// ValidCSRFToken reports whether token matches the one bound to the session.
func (m *Manager) ValidCSRFToken(r *http.Request, token string) bool {
	want, ok := m.get(r).Values[keyCSRFToken].(string)
	if !ok || want == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}

// AddFlash queues a message for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	s := m.get(r)
	s.AddFlash(Flash{Category: category, Message: message})
	return s.Save(r, w)
}

// Flashes pops all queued messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	s := m.get(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	out := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if fl, ok := f.(Flash); ok {
			out = append(out, fl)
		}
	}
	_ = s.Save(r, w)
	return out
}
