package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/rs/zerolog"
)

// GraphDefaultScope requests the application permissions granted to the app.
const GraphDefaultScope = "https://graph.microsoft.com/.default"

var _ service.AppTokenProvider = &AppTokenSource{}

// AppTokenSource acquires application-only Graph tokens with the
// client-credentials grant. No user is involved.
type AppTokenSource struct {
	tenantID      string
	clientID      string
	clientSecret  string
	authorityHost string
	client        *http.Client
	log           zerolog.Logger

	once    sync.Once
	cred    azcore.TokenCredential
	credErr error
}

func NewAppTokenSource(tenantID, clientID, clientSecret, authorityHost string, client *http.Client, log zerolog.Logger) *AppTokenSource {
	return &AppTokenSource{
		tenantID:      tenantID,
		clientID:      clientID,
		clientSecret:  clientSecret,
		authorityHost: authorityHost,
		client:        client,
		log:           log,
	}
}

func (a *AppTokenSource) AppToken(ctx context.Context) (string, error) {
	const op errs.Op = "appTokenSource.AppToken"

	if a.tenantID == "" || a.clientID == "" || a.clientSecret == "" {
		return "", errs.E(errs.Internal, op, errs.Code("Access requests are not configured."), service.ErrConfig)
	}

	cred, err := a.credential()
	if err != nil {
		return "", errs.E(errs.Internal, op, errs.Code("Access requests are not configured."), fmt.Errorf("%w: %w", service.ErrConfig, err))
	}

	// The credential reports failures without the underlying transport
	// error, so the client timeout is applied to the context instead.
	if a.client != nil && a.client.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.client.Timeout)
		defer cancel()
	}

	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{GraphDefaultScope},
	})
	if err != nil {
		a.log.Error().Err(err).Msg("acquiring app-only graph token")

		if errs.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errs.E(errs.Timeout, op, fmt.Errorf("%w: %w", service.ErrToken, service.ErrTimeout))
		}

		return "", errs.E(errs.IO, op, errs.Code("Could not acquire a token for the mail API."), fmt.Errorf("%w: %w", service.ErrToken, err))
	}

	if token.Token == "" {
		return "", errs.E(errs.IO, op, errs.Code("Could not acquire a token for the mail API."), service.ErrToken)
	}

	a.log.Debug().Msg("Successfully retrieved app-only token")

	return token.Token, nil
}

func (a *AppTokenSource) credential() (azcore.TokenCredential, error) {
	a.once.Do(func() {
		opts := &azidentity.ClientSecretCredentialOptions{}

		if a.client != nil {
			opts.Transport = a.client
		}

		if a.authorityHost != "" {
			opts.Cloud = cloud.Configuration{
				ActiveDirectoryAuthorityHost: a.authorityHost,
				Services:                     map[cloud.ServiceName]cloud.ServiceConfiguration{},
			}
		}

		a.cred, a.credErr = azidentity.NewClientSecretCredential(a.tenantID, a.clientID, a.clientSecret, opts)
	})

	return a.cred, a.credErr
}
