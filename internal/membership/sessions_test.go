// internal/membership/sessions_test.go
package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblioteca/internal/apperr"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestSessionLifecycle(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewSessionManager(8 * time.Hour)
	m.now = fixedClock(&now)

	user := &User{ID: "u1"}
	session := m.Login(user)

	require.NotEmpty(t, session.Token)
	assert.Len(t, session.Token, 64)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, now, session.LoginAt)
	assert.Equal(t, now.Add(8*time.Hour), session.ExpiresAt)
	assert.Equal(t, now, user.LastAccessAt)

	got, err := m.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
}

func TestSessionTokensAreUnique(t *testing.T) {
	m := NewSessionManager(time.Hour)
	user := &User{ID: "u1"}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		session := m.Login(user)
		require.False(t, seen[session.Token])
		seen[session.Token] = true
	}
}

func TestSessionSlidingExpiration(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewSessionManager(8 * time.Hour)
	m.now = fixedClock(&now)

	session := m.Login(&User{ID: "u1"})

	// 7 hours later the session is still live; validation pushes the
	// expiry out to a fresh 8 hours from that moment.
	now = now.Add(7 * time.Hour)
	got, err := m.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, now.Add(8*time.Hour), got.ExpiresAt)

	// Another 7 hours is past the original expiry but inside the renewed
	// window, so the session survives.
	now = now.Add(7 * time.Hour)
	_, err = m.Validate(session.Token)
	require.NoError(t, err)
}

func TestSessionExpiresLazily(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewSessionManager(8 * time.Hour)
	m.now = fixedClock(&now)

	session := m.Login(&User{ID: "u1"})

	now = now.Add(8*time.Hour + time.Minute)
	_, err := m.Validate(session.Token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	// An expired session stays dead even if validated again later.
	_, err = m.Validate(session.Token)
	require.Error(t, err)
}

func TestSessionValidateRejectsBadTokens(t *testing.T) {
	m := NewSessionManager(time.Hour)

	_, err := m.Validate("")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	_, err = m.Validate("no-such-token")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func TestSessionInvalidateIsIdempotent(t *testing.T) {
	m := NewSessionManager(time.Hour)
	session := m.Login(&User{ID: "u1"})

	m.Invalidate(session.Token)
	_, err := m.Validate(session.Token)
	require.Error(t, err)

	// Unknown and already-invalidated tokens are no-ops.
	m.Invalidate(session.Token)
	m.Invalidate("no-such-token")
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewSessionManager(time.Hour)
	a := m.Login(&User{ID: "a"})
	b := m.Login(&User{ID: "b"})

	m.Invalidate(a.Token)

	_, err := m.Validate(a.Token)
	require.Error(t, err)

	got, err := m.Validate(b.Token)
	require.NoError(t, err)
	assert.Equal(t, "b", got.UserID)
}
