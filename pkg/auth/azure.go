package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// UserReadScope is the minimal delegated scope requested at sign-in.
const UserReadScope = "User.Read"

var _ service.TokenExchanger = &Azure{}

// Azure exchanges authorization codes with Azure AD on behalf of a
// confidential client.
type Azure struct {
	config oauth2.Config

	clientID     string
	clientTenant string

	client   *http.Client
	verifier *oidc.IDTokenVerifier
	log      zerolog.Logger
}

func NewAzure(clientID, clientSecret, clientTenant, redirectURL string, client *http.Client, log zerolog.Logger) *Azure {
	return &Azure{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoints.AzureAD(clientTenant),
			RedirectURL:  redirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email", UserReadScope},
		},
		clientID:     clientID,
		clientTenant: clientTenant,
		client:       client,
		log:          log,
	}
}

// WithEndpoint overrides the token and authorize endpoints.
func (a *Azure) WithEndpoint(endpoint oauth2.Endpoint) *Azure {
	a.config.Endpoint = endpoint

	return a
}

// EnableIDTokenVerification discovers the tenant's OpenID configuration
// and verifies id tokens against its signing keys from then on.
func (a *Azure) EnableIDTokenVerification(ctx context.Context) error {
	issuer := fmt.Sprintf("https://login.microsoftonline.com/%v/v2.0", a.clientTenant)

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, a.client), issuer)
	if err != nil {
		return fmt.Errorf("discovering provider %s: %w", issuer, err)
	}

	a.config.Endpoint = provider.Endpoint()
	a.verifier = provider.Verifier(&oidc.Config{ClientID: a.clientID})

	return nil
}

func (a *Azure) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (a *Azure) Exchange(ctx context.Context, code string) (*service.TokenResult, error) {
	const op errs.Op = "azure.Exchange"

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)

	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		a.log.Error().Err(err).Msg("exchanging authorization code for tokens")

		if errs.IsTimeout(err) {
			return nil, errs.E(errs.Timeout, op, fmt.Errorf("%w: %w", service.ErrExchange, service.ErrTimeout))
		}

		return nil, errs.E(errs.Unauthenticated, op, fmt.Errorf("%w: %w", service.ErrExchange, err))
	}

	if token.AccessToken == "" {
		a.log.Info().Msg("token response without access_token")
		return nil, errs.E(errs.Unauthenticated, op, service.ErrExchange)
	}

	claims, err := a.claims(ctx, token)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return &service.TokenResult{
		AccessToken: token.AccessToken,
		Claims:      claims,
	}, nil
}

func (a *Azure) claims(ctx context.Context, token *oauth2.Token) (service.IdentityClaims, error) {
	const op errs.Op = "azure.claims"

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		a.log.Info().Msg("token response without id_token")
		return service.IdentityClaims{}, nil
	}

	if a.verifier == nil {
		claims, err := DecodeUnverifiedClaims(rawIDToken)
		if err != nil {
			a.log.Info().Err(err).Msg("decoding id_token payload")
			return service.IdentityClaims{}, nil
		}

		return claims, nil
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		a.log.Info().Err(err).Msg("invalid id_token")
		return service.IdentityClaims{}, errs.E(errs.Unauthenticated, op, fmt.Errorf("%w: %w", service.ErrClaims, err))
	}

	var claims service.IdentityClaims
	if err := idToken.Claims(&claims); err != nil {
		a.log.Info().Err(err).Msg("unable to parse claims")
		return service.IdentityClaims{}, errs.E(errs.Unauthenticated, op, fmt.Errorf("%w: %w", service.ErrClaims, err))
	}

	return claims, nil
}
