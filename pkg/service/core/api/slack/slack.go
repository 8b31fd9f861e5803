package slack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	slackapi "github.com/slack-go/slack"
)

type slackAPI struct {
	channel string
	api     *slackapi.Client
}

var _ service.ApproverNotifierAPI = &slackAPI{}

func (a *slackAPI) InformNewAccessRequest(ctx context.Context, req service.AccessRequest) error {
	const op errs.Op = "slackAPI.InformNewAccessRequest"

	message := fmt.Sprintf(
		"%s was blocked by the allowlist and has requested access to the LangGraph AI Onboarding app.\nSent from: %s\nReference: %s",
		req.RequesterEmail,
		req.SenderMailbox,
		req.Reference,
	)

	_, _, err := a.api.PostMessageContext(ctx, a.channel, slackapi.MsgOptionText(message, false))
	if err != nil {
		return errs.E(errs.IO, op, err)
	}

	return nil
}

// NewSlackAPI posts to channel with a bot token. An empty apiURL uses the
// public Slack API.
func NewSlackAPI(token, channel, apiURL string, client *http.Client) *slackAPI {
	opts := []slackapi.Option{}

	if apiURL != "" {
		opts = append(opts, slackapi.OptionAPIURL(apiURL))
	}

	if client != nil {
		opts = append(opts, slackapi.OptionHTTPClient(client))
	}

	return &slackAPI{
		channel: channel,
		api:     slackapi.New(token, opts...),
	}
}
