package handlers

import (
	"context"
	"net/http"

	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
)

type ToolsHandler struct {
	service service.ToolsService
	store   service.SessionStorage
}

// ListTools stores the session it gets back even when the call is
// rejected, so an expired login is reset for the next request.
func (h *ToolsHandler) ListTools(ctx context.Context, _ *http.Request, sess service.Session, _ any) (*service.ToolList, error) {
	const op errs.Op = "ToolsHandler.ListTools"

	next, tools, err := h.service.ListTools(ctx, sess)

	if saveErr := h.store.SaveSession(ctx, next); saveErr != nil {
		return nil, errs.E(op, saveErr)
	}

	if err != nil {
		return nil, errs.E(op, err)
	}

	return tools, nil
}

func NewToolsHandler(service service.ToolsService, store service.SessionStorage) *ToolsHandler {
	return &ToolsHandler{
		service: service,
		store:   store,
	}
}
