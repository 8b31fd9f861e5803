package static

import (
	"context"

	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/rs/zerolog"
)

var _ service.ApproverNotifierAPI = &slackAPI{}

// slackAPI stands in for Slack during local development and only logs.
type slackAPI struct {
	log zerolog.Logger
}

func (s *slackAPI) InformNewAccessRequest(_ context.Context, req service.AccessRequest) error {
	s.log.Info().
		Str("reference", req.Reference).
		Str("requester", req.RequesterEmail).
		Str("sender", req.SenderMailbox).
		Msg("would inform approvers about access request")

	return nil
}

func NewSlackAPI(log zerolog.Logger) *slackAPI {
	return &slackAPI{
		log: log,
	}
}
