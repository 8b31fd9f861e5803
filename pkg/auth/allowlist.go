package auth

import (
	"strings"

	"github.com/navikt/onboarding-assistant/pkg/service"
)

var _ service.AuthorizationGate = &Allowlist{}

// Allowlist is the set of principals allowed past the login gate. It is
// built once at startup and never modified.
type Allowlist struct {
	users             map[string]struct{}
	allowAllWhenEmpty bool
}

func NewAllowlist(users []string, allowAllWhenEmpty bool) *Allowlist {
	a := &Allowlist{
		users:             make(map[string]struct{}, len(users)),
		allowAllWhenEmpty: allowAllWhenEmpty,
	}

	for _, u := range users {
		u = normalizeEmail(u)
		if u == "" {
			continue
		}

		a.users[u] = struct{}{}
	}

	return a
}

// Authorize matches the full, lowercased email against the list. An empty
// list allows everyone only when allowAllWhenEmpty is set.
func (a *Allowlist) Authorize(email string) service.Decision {
	if len(a.users) == 0 {
		if a.allowAllWhenEmpty {
			return service.Allowed
		}

		return service.Denied
	}

	if _, ok := a.users[normalizeEmail(email)]; ok {
		return service.Allowed
	}

	return service.Denied
}

func (a *Allowlist) Len() int {
	return len(a.users)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
