package api

import (
	"net/http"

	"github.com/navikt/onboarding-assistant/pkg/config/v2"
	"github.com/navikt/onboarding-assistant/pkg/service"
	httpapi "github.com/navikt/onboarding-assistant/pkg/service/core/api/http"
	mcpapi "github.com/navikt/onboarding-assistant/pkg/service/core/api/mcp"
	slackapi "github.com/navikt/onboarding-assistant/pkg/service/core/api/slack"
	"github.com/navikt/onboarding-assistant/pkg/service/core/api/static"
	"github.com/rs/zerolog"
)

type Clients struct {
	AccessRequestAPI    service.AccessRequestAPI
	ApproverNotifierAPI service.ApproverNotifierAPI
	ToolsAPI            service.ToolsAPI
}

// NewClients builds the outbound API clients. The notifier and tools
// clients are left nil when they are not configured.
func NewClients(
	client *http.Client,
	tokens service.AppTokenProvider,
	cfg config.Config,
	log zerolog.Logger,
) *Clients {
	clients := &Clients{
		AccessRequestAPI: httpapi.NewGraphMailAPI(
			client,
			cfg.Graph.BaseURL,
			tokens,
			log.With().Str("component", "graph_mail").Logger(),
		),
	}

	switch {
	case cfg.Slack.Enabled():
		clients.ApproverNotifierAPI = slackapi.NewSlackAPI(cfg.Slack.Token, cfg.Slack.Channel, "", client)
	case cfg.Debug:
		clients.ApproverNotifierAPI = static.NewSlackAPI(log.With().Str("component", "static_slack").Logger())
	}

	if cfg.Tools.ServerURL != "" {
		clients.ToolsAPI = mcpapi.NewToolsAPI(
			cfg.Tools.ServerURL,
			client,
			log.With().Str("component", "tools").Logger(),
		)
	}

	return clients
}
