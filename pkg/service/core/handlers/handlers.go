package handlers

import (
	"net/http"
	"net/url"

	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/navikt/onboarding-assistant/pkg/service/core"
)

type Handlers struct {
	AuthHandler          *AuthHandler
	AccessRequestHandler *AccessRequestHandler
	ToolsHandler         *ToolsHandler
}

func NewHandlers(s *core.Services, store service.SessionStorage) *Handlers {
	return &Handlers{
		AuthHandler:          NewAuthHandler(s.AuthService, store),
		AccessRequestHandler: NewAccessRequestHandler(s.AccessRequestService),
		ToolsHandler:         NewToolsHandler(s.ToolsService, store),
	}
}

// authResponseParams are appended by the identity provider when it sends
// the user back.
var authResponseParams = []string{"code", "state", "session_state", "client_info"}

// AuthParamsFromQuery is the only place the authorization response is read
// from a request.
func AuthParamsFromQuery(q url.Values) service.AuthParams {
	return service.AuthParams{
		Code:  q.Get("code"),
		State: q.Get("state"),
	}
}

func withoutAuthParams(r *http.Request) string {
	u := *r.URL

	q := u.Query()
	for _, p := range authResponseParams {
		q.Del(p)
	}

	u.RawQuery = q.Encode()

	return u.RequestURI()
}
