package service

import (
	"context"
	"time"
)

// SessionStorage holds one Session per client. Implementations are
// process local; nothing survives a restart.
type SessionStorage interface {
	GetSession(ctx context.Context, id string) (*Session, error)
	SaveSession(ctx context.Context, session Session) error
	DeleteSession(ctx context.Context, id string) error
	EvictIdle(ctx context.Context, idle time.Duration) (int, error)
	Count() int
}

// Session is the per-client login state. Token is non-empty if and only
// if LoggedIn is true, and LoginTime is only meaningful while LoggedIn.
type Session struct {
	ID string

	LoggedIn  bool
	Token     string
	LoginTime time.Time

	// Email is the lowercase address of the authenticated principal.
	Email string

	// AccessDeniedEmail is recorded when the allowlist rejects a principal.
	AccessDeniedEmail string

	// OAuthState is the state value handed out with the last login URL.
	OAuthState string

	LastSeen time.Time
}

// NewSession returns a session with anonymous defaults.
func NewSession(id string) Session {
	return Session{
		ID: id,
	}
}

// Anonymous resets the session to defaults, keeping its identity.
func (s Session) Anonymous() Session {
	n := NewSession(s.ID)
	n.LastSeen = s.LastSeen

	return n
}

// Valid reports whether the token/logged-in invariant holds.
func (s Session) Valid() bool {
	return s.LoggedIn == (s.Token != "")
}

type sessionContextKey struct{}

func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(Session)

	return sess, ok
}

func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}
