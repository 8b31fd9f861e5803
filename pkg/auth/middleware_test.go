package auth_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/navikt/onboarding-assistant/pkg/auth"
	"github.com/navikt/onboarding-assistant/pkg/config/v2"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCookie = config.CookieSettings{
	Name:     "onboarding_session",
	MaxAge:   3600,
	Path:     "/",
	SameSite: "Lax",
	HttpOnly: true,
}

func sessionEcho(t *testing.T, got *service.Session) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := service.SessionFromContext(r.Context())
		assert.True(t, ok)

		*got = sess

		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware_NewClient(t *testing.T) {
	store := auth.NewSessionStore()
	m := auth.NewSessionMiddleware(store, testCookie, zerolog.New(io.Discard))

	var got service.Session

	rr := httptest.NewRecorder()
	m.Handler(sessionEcho(t, &got)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, got.ID)
	assert.False(t, got.LoggedIn)
	assert.Equal(t, 1, store.Count())

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "onboarding_session", cookies[0].Name)
	assert.Equal(t, got.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestSessionMiddleware_KnownClient(t *testing.T) {
	store := auth.NewSessionStore()
	require.NoError(t, store.SaveSession(context.Background(), service.Session{
		ID:       "known",
		LoggedIn: true,
		Token:    "token",
		Email:    "a@x.com",
	}))

	m := auth.NewSessionMiddleware(store, testCookie, zerolog.New(io.Discard))

	var got service.Session

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "onboarding_session", Value: "known"})

	rr := httptest.NewRecorder()
	m.Handler(sessionEcho(t, &got)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "known", got.ID)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Empty(t, rr.Result().Cookies())
}

func TestSessionMiddleware_UnknownCookie(t *testing.T) {
	store := auth.NewSessionStore()
	m := auth.NewSessionMiddleware(store, testCookie, zerolog.New(io.Discard))

	var got service.Session

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "onboarding_session", Value: "evicted"})

	rr := httptest.NewRecorder()
	m.Handler(sessionEcho(t, &got)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEqual(t, "evicted", got.ID)
	require.Len(t, rr.Result().Cookies(), 1)
	assert.Equal(t, got.ID, rr.Result().Cookies()[0].Value)
}
