package mcp

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/rs/zerolog"
)

const (
	clientName    = "onboarding-assistant"
	clientVersion = "v0.1.0"
	maxPages      = 20
)

var _ service.ToolsAPI = &toolsAPI{}

type toolsAPI struct {
	client    *mcp.Client
	transport func() mcp.Transport
	log       zerolog.Logger
}

// ListTools opens a short lived session against the tool server and pages
// through its tool listing.
func (a *toolsAPI) ListTools(ctx context.Context) ([]service.Tool, error) {
	const op errs.Op = "toolsAPI.ListTools"

	session, err := a.client.Connect(ctx, a.transport(), nil)
	if err != nil {
		a.log.Error().Err(err).Msg("connecting to tool server")

		return nil, toolsError(op, err)
	}
	defer session.Close()

	tools := []service.Tool{}
	params := &mcp.ListToolsParams{}

	for i := 0; i < maxPages; i++ {
		res, err := session.ListTools(ctx, params)
		if err != nil {
			a.log.Error().Err(err).Msg("listing tools")

			return nil, toolsError(op, err)
		}

		for _, t := range res.Tools {
			tools = append(tools, service.Tool{
				Name:        t.Name,
				Description: t.Description,
			})
		}

		if res.NextCursor == "" {
			return tools, nil
		}

		params = &mcp.ListToolsParams{Cursor: res.NextCursor}
	}

	a.log.Warn().Int("pages", maxPages).Msg("tool listing truncated")

	return tools, nil
}

func toolsError(op errs.Op, err error) error {
	if errs.IsTimeout(err) {
		return errs.E(errs.Timeout, op, errs.Code("The tool server did not answer in time."), service.ErrTimeout)
	}

	return errs.E(errs.IO, op, errs.Code("The tool server is unavailable."), err)
}

// NewToolsAPI lists tools from a streamable HTTP MCP endpoint.
func NewToolsAPI(endpoint string, client *http.Client, log zerolog.Logger) *toolsAPI {
	return NewToolsAPIWithTransport(func() mcp.Transport {
		return &mcp.StreamableClientTransport{
			Endpoint:   endpoint,
			HTTPClient: client,
		}
	}, log)
}

func NewToolsAPIWithTransport(transport func() mcp.Transport, log zerolog.Logger) *toolsAPI {
	return &toolsAPI{
		client:    mcp.NewClient(&mcp.Implementation{Name: clientName, Version: clientVersion}, nil),
		transport: transport,
		log:       log,
	}
}
