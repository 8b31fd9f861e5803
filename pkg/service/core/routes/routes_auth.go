package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/navikt/onboarding-assistant/pkg/service/core/handlers"
	"github.com/navikt/onboarding-assistant/pkg/service/core/transport"
	"github.com/rs/zerolog"
)

type AuthEndpoints struct {
	Page   http.HandlerFunc
	Login  http.HandlerFunc
	Logout http.HandlerFunc
}

func NewAuthEndpoints(log zerolog.Logger, h *handlers.AuthHandler) *AuthEndpoints {
	return &AuthEndpoints{
		Page:   transport.ForSession(h.Page).RequestFromQuery(handlers.AuthParamsFromQuery).Build(log),
		Login:  transport.ForSession(h.Login).Build(log),
		Logout: transport.ForSession(h.Logout).Build(log),
	}
}

// NewAuthRoutes mounts the page on the redirect path, so the provider sends
// the authorization code straight back to it.
func NewAuthRoutes(endpoints *AuthEndpoints, session func(http.Handler) http.Handler) AddRoutesFn {
	return func(router chi.Router) {
		router.With(session).Get("/", endpoints.Page)

		router.Route("/api", func(r chi.Router) {
			r.Use(session)
			r.Get("/login", endpoints.Login)
			r.Post("/logout", endpoints.Logout)
		})
	}
}
