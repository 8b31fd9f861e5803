package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/navikt/onboarding-assistant/pkg/service/core/handlers"
	"github.com/navikt/onboarding-assistant/pkg/service/core/transport"
	"github.com/rs/zerolog"
)

type ToolsEndpoints struct {
	ListTools http.HandlerFunc
}

func NewToolsEndpoints(log zerolog.Logger, h *handlers.ToolsHandler) *ToolsEndpoints {
	return &ToolsEndpoints{
		ListTools: transport.ForSession(h.ListTools).Build(log),
	}
}

func NewToolsRoutes(endpoints *ToolsEndpoints, session func(http.Handler) http.Handler) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/tools", func(r chi.Router) {
			r.Use(session)
			r.Get("/", endpoints.ListTools)
		})
	}
}
