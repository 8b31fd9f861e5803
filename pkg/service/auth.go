package service

import (
	"context"
	"strings"
)

type TokenExchanger interface {
	// AuthCodeURL returns the provider sign-in URL carrying the given state.
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*TokenResult, error)
}

type AuthorizationGate interface {
	Authorize(email string) Decision
}

type AuthService interface {
	// Render runs one page render cycle for the session.
	Render(ctx context.Context, sess Session, params AuthParams) (Session, *PageView, error)
	// HandleAuthFlow processes an incoming authorization code.
	HandleAuthFlow(ctx context.Context, sess Session, params AuthParams) (Session, FlowOutcome, error)
	// LoginURL issues a new state and returns the provider sign-in URL.
	LoginURL(ctx context.Context, sess Session) (Session, string, error)
	Logout(ctx context.Context, sess Session) (Session, error)
	// RequireAuthenticated returns an error unless the session is logged in.
	// An expired session comes back reset and must be stored by the caller.
	RequireAuthenticated(ctx context.Context, sess Session) (Session, error)
}

type TokenResult struct {
	AccessToken string
	Claims      IdentityClaims
}

// IdentityClaims is derived from the id token. It is never stored.
type IdentityClaims struct {
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	Name              string `json:"name"`
}

// UserEmail returns the lowercase email of the principal, preferring
// preferred_username over email.
func (c IdentityClaims) UserEmail() string {
	email := c.PreferredUsername
	if email == "" {
		email = c.Email
	}

	return strings.ToLower(strings.TrimSpace(email))
}

// AuthParams are the request parameters read once per render.
type AuthParams struct {
	Code  string
	State string
}

type Decision int

const (
	Denied Decision = iota
	Allowed
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	default:
		return "denied"
	}
}

type FlowOutcome int

const (
	// FlowSkipped means there was no code to process, or the session was
	// already authenticated.
	FlowSkipped FlowOutcome = iota
	FlowAuthenticated
	FlowDenied
)

func (o FlowOutcome) String() string {
	switch o {
	case FlowAuthenticated:
		return "authenticated"
	case FlowDenied:
		return "denied"
	default:
		return "skipped"
	}
}

type View string

const (
	ViewLogin         View = "login"
	ViewRequestAccess View = "request_access"
	ViewExpired       View = "expired"
	ViewAuthenticated View = "authenticated"
)

// PageView tells the page layer what to show.
type PageView struct {
	View          View   `json:"view"`
	LoginURL      string `json:"loginURL,omitempty"`
	Email         string `json:"email,omitempty"`
	DeniedEmail   string `json:"deniedEmail,omitempty"`
	DefaultSender string `json:"defaultSender,omitempty"`
	Notice        string `json:"notice,omitempty"`
	Error         string `json:"error,omitempty"`

	// Rerender is set when the page must be reloaded without the
	// authorization code.
	Rerender bool `json:"-"`
}
