package handlers

import (
	"context"
	"net/http"

	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/navikt/onboarding-assistant/pkg/service/core/transport"
)

type AuthHandler struct {
	service service.AuthService
	store   service.SessionStorage
}

// Page runs one render cycle. Once the user has signed in it redirects to
// the same page without the authorization response, so a reload never
// replays the code.
func (h *AuthHandler) Page(ctx context.Context, r *http.Request, sess service.Session, params service.AuthParams) (any, error) {
	const op errs.Op = "AuthHandler.Page"

	next, view, err := h.service.Render(ctx, sess, params)
	if err != nil {
		return nil, errs.E(op, err)
	}

	err = h.store.SaveSession(ctx, next)
	if err != nil {
		return nil, errs.E(op, err)
	}

	if view.Rerender {
		return transport.NewRedirect(withoutAuthParams(r), r), nil
	}

	return view, nil
}

func (h *AuthHandler) Login(ctx context.Context, r *http.Request, sess service.Session, _ any) (*transport.Redirect, error) {
	const op errs.Op = "AuthHandler.Login"

	next, loginURL, err := h.service.LoginURL(ctx, sess)
	if err != nil {
		return nil, errs.E(op, err)
	}

	err = h.store.SaveSession(ctx, next)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return transport.NewRedirect(loginURL, r), nil
}

// Logout drops the stored session entirely. The next request carrying the
// old cookie is handed a fresh session with a new id.
func (h *AuthHandler) Logout(ctx context.Context, _ *http.Request, sess service.Session, _ any) (*transport.Empty, error) {
	const op errs.Op = "AuthHandler.Logout"

	next, err := h.service.Logout(ctx, sess)
	if err != nil {
		return nil, errs.E(op, err)
	}

	err = h.store.DeleteSession(ctx, next.ID)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return &transport.Empty{}, nil
}

func NewAuthHandler(service service.AuthService, store service.SessionStorage) *AuthHandler {
	return &AuthHandler{
		service: service,
		store:   store,
	}
}
