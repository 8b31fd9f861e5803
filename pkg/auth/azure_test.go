package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/navikt/onboarding-assistant/pkg/auth"
	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-provider-key"))
	require.NoError(t, err)

	return raw
}

func newTokenServer(t *testing.T, body map[string]any, status int, delay time.Duration) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "http://localhost:8501", r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func newAzure(serverURL string, timeout time.Duration) *auth.Azure {
	return auth.NewAzure(
		"client-id",
		"client-secret",
		"tenant-id",
		"http://localhost:8501",
		&http.Client{Timeout: timeout},
		zerolog.New(io.Discard),
	).WithEndpoint(oauth2.Endpoint{
		AuthURL:   serverURL + "/authorize",
		TokenURL:  serverURL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	})
}

func TestAzure_Exchange(t *testing.T) {
	idToken := newIDToken(t, jwt.MapClaims{
		"preferred_username": "User@X.com",
		"name":               "Test User",
	})

	testCases := []struct {
		name      string
		body      map[string]any
		status    int
		delay     time.Duration
		expect    *service.TokenResult
		expectErr error
		kind      errs.Kind
	}{
		{
			name: "access token and decoded claims",
			body: map[string]any{
				"access_token": "access-token",
				"token_type":   "Bearer",
				"expires_in":   3600,
				"id_token":     idToken,
			},
			status: http.StatusOK,
			expect: &service.TokenResult{
				AccessToken: "access-token",
				Claims: service.IdentityClaims{
					PreferredUsername: "User@X.com",
					Name:              "Test User",
				},
			},
		},
		{
			name: "missing id token yields empty claims",
			body: map[string]any{
				"access_token": "access-token",
				"token_type":   "Bearer",
			},
			status: http.StatusOK,
			expect: &service.TokenResult{
				AccessToken: "access-token",
			},
		},
		{
			name: "garbage id token yields empty claims",
			body: map[string]any{
				"access_token": "access-token",
				"token_type":   "Bearer",
				"id_token":     "not.a.jwt",
			},
			status: http.StatusOK,
			expect: &service.TokenResult{
				AccessToken: "access-token",
			},
		},
		{
			name: "invalid grant",
			body: map[string]any{
				"error":             "invalid_grant",
				"error_description": "AADSTS54005: OAuth2 Authorization code was already redeemed",
			},
			status:    http.StatusBadRequest,
			expectErr: service.ErrExchange,
			kind:      errs.Unauthenticated,
		},
		{
			name: "no access token",
			body: map[string]any{
				"token_type": "Bearer",
			},
			status:    http.StatusOK,
			expectErr: service.ErrExchange,
			kind:      errs.Unauthenticated,
		},
		{
			name: "timeout",
			body: map[string]any{
				"access_token": "access-token",
			},
			status:    http.StatusOK,
			delay:     200 * time.Millisecond,
			expectErr: service.ErrTimeout,
			kind:      errs.Timeout,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := newTokenServer(t, tc.body, tc.status, tc.delay)
			defer server.Close()

			timeout := time.Second
			if tc.delay > 0 {
				timeout = 50 * time.Millisecond
			}

			got, err := newAzure(server.URL, timeout).Exchange(context.Background(), "the-code")

			if tc.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectErr)
				assert.True(t, errs.KindIs(tc.kind, err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestAzure_AuthCodeURL(t *testing.T) {
	a := newAzure("https://login.example.com", time.Second)

	u, err := url.Parse(a.AuthCodeURL("some-state"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "/authorize", u.Path)
	assert.Equal(t, "some-state", q.Get("state"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8501", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), auth.UserReadScope)
}

func TestDecodeUnverifiedClaims(t *testing.T) {
	claims, err := auth.DecodeUnverifiedClaims(newIDToken(t, jwt.MapClaims{
		"email": "someone@x.com",
	}))
	require.NoError(t, err)
	assert.Equal(t, "someone@x.com", claims.UserEmail())

	_, err = auth.DecodeUnverifiedClaims("garbage")
	assert.Error(t, err)
}
