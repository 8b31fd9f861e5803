package handlers

import (
	"context"
	"net/http"

	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
)

type AccessRequestHandler struct {
	service service.AccessRequestService
}

func (h *AccessRequestHandler) NewAccessRequest(ctx context.Context, _ *http.Request, sess service.Session, in service.NewAccessRequestDTO) (*service.AccessRequestReceipt, error) {
	const op errs.Op = "AccessRequestHandler.NewAccessRequest"

	receipt, err := h.service.RequestAccess(ctx, sess, in)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return receipt, nil
}

func NewAccessRequestHandler(service service.AccessRequestService) *AccessRequestHandler {
	return &AccessRequestHandler{
		service: service,
	}
}
