package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	httpapi "github.com/navikt/onboarding-assistant/pkg/service/core/api/http"
	"github.com/rs/zerolog"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken struct {
	token string
	err   error
}

func (s staticToken) AppToken(context.Context) (string, error) {
	return s.token, s.err
}

func newAccessRequest(requester string) service.AccessRequest {
	return service.AccessRequest{
		Reference:       "ref-1",
		SenderMailbox:   "bot@x.com",
		RequesterEmail:  requester,
		ApproverMailbox: "approver@x.com",
		RedirectURI:     "http://localhost:8501",
		Timestamp:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderAccessRequestBody(t *testing.T) {
	testCases := []struct {
		name      string
		requester string
	}{
		{
			name:      "access_request_body",
			requester: "b@x.com",
		},
		{
			name:      "access_request_body_escaped",
			requester: "<script>alert(1)</script>@x.com",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := httpapi.RenderAccessRequestBody(newAccessRequest(tc.requester))
			require.NoError(t, err)

			g := goldie.New(t)
			g.Assert(t, tc.name, []byte(body))
		})
	}
}

func TestGraphMailAPI_SendAccessRequest(t *testing.T) {
	body, err := httpapi.RenderAccessRequestBody(newAccessRequest("b@x.com"))
	require.NoError(t, err)

	expected := expectedPayload(t, body)

	testCases := []struct {
		name       string
		status     int
		response   string
		token      staticToken
		expectErr  error
		expectKind errs.Kind
		expectCall bool
	}{
		{
			name:       "accepted",
			status:     http.StatusAccepted,
			token:      staticToken{token: "app-token"},
			expectCall: true,
		},
		{
			name:       "forbidden",
			status:     http.StatusForbidden,
			response:   `{"error":{"code":"ErrorAccessDenied"}}`,
			token:      staticToken{token: "app-token"},
			expectErr:  service.ErrSend,
			expectKind: errs.IO,
			expectCall: true,
		},
		{
			name:       "ok is not accepted",
			status:     http.StatusOK,
			token:      staticToken{token: "app-token"},
			expectErr:  service.ErrSend,
			expectKind: errs.IO,
			expectCall: true,
		},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			response:   "boom",
			token:      staticToken{token: "app-token"},
			expectErr:  service.ErrSend,
			expectKind: errs.IO,
			expectCall: true,
		},
		{
			name:       "no app token",
			token:      staticToken{err: errs.E(errs.Internal, service.ErrConfig)},
			expectErr:  service.ErrConfig,
			expectKind: errs.Internal,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true

				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1.0/users/bot@x.com/sendMail", r.URL.Path)
				assert.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				raw, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				assert.JSONEq(t, expected, string(raw))

				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.response))
			}))
			defer server.Close()

			api := httpapi.NewGraphMailAPI(server.Client(), server.URL+"/v1.0/", tc.token, zerolog.New(io.Discard))

			err := api.SendAccessRequest(context.Background(), newAccessRequest("b@x.com"))
			assert.Equal(t, tc.expectCall, called)

			if tc.expectErr == nil {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectErr)
			assert.True(t, errs.KindIs(tc.expectKind, err))

			if tc.expectErr == service.ErrSend {
				var sendErr *service.SendError
				require.ErrorAs(t, err, &sendErr)
				assert.Equal(t, tc.status, sendErr.StatusCode)
				assert.Equal(t, tc.response, sendErr.Body)
			}
		})
	}
}

func TestGraphMailAPI_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := &http.Client{Timeout: 50 * time.Millisecond}
	api := httpapi.NewGraphMailAPI(client, server.URL, staticToken{token: "app-token"}, zerolog.New(io.Discard))

	err := api.SendAccessRequest(context.Background(), newAccessRequest("b@x.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrTimeout)
	assert.True(t, errs.KindIs(errs.Timeout, err))
}

func expectedPayload(t *testing.T, body string) string {
	t.Helper()

	content, err := jsonString(body)
	require.NoError(t, err)

	return `{
		"message": {
			"subject": "Access Request: LangGraph AI Onboarding",
			"importance": "Normal",
			"body": {"contentType": "HTML", "content": ` + content + `},
			"toRecipients": [{"emailAddress": {"address": "approver@x.com"}}]
		},
		"saveToSentItems": true
	}`
}

func jsonString(s string) (string, error) {
	raw, err := json.Marshal(s)

	return string(raw), err
}
