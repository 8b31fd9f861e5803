package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/navikt/onboarding-assistant/pkg/service/core/handlers"
	"github.com/navikt/onboarding-assistant/pkg/service/core/transport"
	"github.com/rs/zerolog"
)

type AccessRequestEndpoints struct {
	CreateAccessRequest http.HandlerFunc
}

func NewAccessRequestEndpoints(log zerolog.Logger, h *handlers.AccessRequestHandler) *AccessRequestEndpoints {
	return &AccessRequestEndpoints{
		CreateAccessRequest: transport.ForSession(h.NewAccessRequest).RequestFromJSON().Build(log),
	}
}

func NewAccessRequestRoutes(endpoints *AccessRequestEndpoints, session func(http.Handler) http.Handler) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/access-requests", func(r chi.Router) {
			r.Use(session)
			r.Post("/", endpoints.CreateAccessRequest)
		})
	}
}
