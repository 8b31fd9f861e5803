package core

import "github.com/navikt/onboarding-assistant/pkg/service"

type Services struct {
	AuthService          service.AuthService
	AccessRequestService service.AccessRequestService
	ToolsService         service.ToolsService
}

func NewServices(
	authService service.AuthService,
	accessRequestService service.AccessRequestService,
	toolsService service.ToolsService,
) *Services {
	return &Services{
		AuthService:          authService,
		AccessRequestService: accessRequestService,
		ToolsService:         toolsService,
	}
}
