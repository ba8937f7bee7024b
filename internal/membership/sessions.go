// internal/membership/sessions.go
package membership

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"biblioteca/internal/apperr"
)

// DefaultSessionTTL is the sliding-window session lifetime.
const DefaultSessionTTL = 8 * time.Hour

// Session is a live authenticated session. The SessionManager exclusively
// owns the record; callers receive copies.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	LoginAt   time.Time `json:"login_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
}

// SessionManager issues, validates, renews, and invalidates session
// tokens. Expired sessions are discovered lazily on the next Validate;
// nothing sweeps them proactively.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager creates a manager with the given session lifetime.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// newToken mints a cryptographically-random 256-bit token.
func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// Login mints a session for an already-authenticated user and records
// the login as the user's last-access event. Credential verification is
// the caller's concern; there is no error path here.
func (m *SessionManager) Login(user *User) Session {
	now := m.now()
	session := &Session{
		Token:     newToken(),
		UserID:    user.ID,
		LoginAt:   now,
		ExpiresAt: now.Add(m.ttl),
		Active:    true,
	}
	user.LastAccessAt = now

	m.mu.Lock()
	m.sessions[session.Token] = session
	m.mu.Unlock()

	return *session
}

// Validate checks a token and, on success, renews the session expiry to
// now plus the configured lifetime (sliding expiration).
func (m *SessionManager) Validate(token string) (Session, error) {
	if token == "" {
		return Session{}, apperr.Authentication("no session token provided")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok || !session.Active || !m.now().Before(session.ExpiresAt) {
		return Session{}, apperr.Authentication("session invalid or expired")
	}

	session.ExpiresAt = m.now().Add(m.ttl)
	return *session, nil
}

// Invalidate marks the session inactive and drops it from the index.
// Unknown or already-invalid tokens are a no-op.
func (m *SessionManager) Invalidate(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[token]; ok {
		session.Active = false
		delete(m.sessions, token)
	}
}
