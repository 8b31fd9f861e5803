package core

import (
	"context"

	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
)

var _ service.ToolsService = &toolsService{}

type toolsService struct {
	authService service.AuthService
	toolsAPI    service.ToolsAPI
}

func (s *toolsService) ListTools(ctx context.Context, sess service.Session) (service.Session, *service.ToolList, error) {
	const op errs.Op = "toolsService.ListTools"

	sess, err := s.authService.RequireAuthenticated(ctx, sess)
	if err != nil {
		return sess, nil, errs.E(op, err)
	}

	if s.toolsAPI == nil {
		return sess, &service.ToolList{Tools: []service.Tool{}}, nil
	}

	tools, err := s.toolsAPI.ListTools(ctx)
	if err != nil {
		return sess, nil, errs.E(op, err)
	}

	return sess, &service.ToolList{
		Tools: tools,
	}, nil
}

func NewToolsService(authService service.AuthService, toolsAPI service.ToolsAPI) *toolsService {
	return &toolsService{
		authService: authService,
		toolsAPI:    toolsAPI,
	}
}
