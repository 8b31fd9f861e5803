package routes

import (
	"net/http"

	"github.com/go-chi/chi"
)

func NewHealthRoutes() AddRoutesFn {
	return func(router chi.Router) {
		router.Get("/internal/isalive", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}
}
