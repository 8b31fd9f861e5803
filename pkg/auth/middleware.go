package auth

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/navikt/onboarding-assistant/pkg/config/v2"
	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/rs/zerolog"
)

// SessionMiddleware resolves the client's session from its cookie, and
// creates a fresh anonymous session on first interaction.
type SessionMiddleware struct {
	store  service.SessionStorage
	cookie config.CookieSettings
	log    zerolog.Logger
}

func NewSessionMiddleware(store service.SessionStorage, cookie config.CookieSettings, log zerolog.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		store:  store,
		cookie: cookie,
		log:    log,
	}
}

func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var sess *service.Session

		if c, err := r.Cookie(m.cookie.Name); err == nil && c.Value != "" {
			sess, err = m.store.GetSession(ctx, c.Value)
			if err != nil && !errs.KindIs(errs.NotExist, err) {
				errs.HTTPErrorResponse(w, m.log, err)
				return
			}
		}

		if sess == nil {
			fresh := service.NewSession(uuid.NewString())

			if err := m.store.SaveSession(ctx, fresh); err != nil {
				errs.HTTPErrorResponse(w, m.log, err)
				return
			}

			m.setCookie(w, fresh.ID)
			sess = &fresh
		}

		next.ServeHTTP(w, r.WithContext(service.ContextWithSession(ctx, *sess)))
	})
}

func (m *SessionMiddleware) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    id,
		Path:     m.cookie.Path,
		Domain:   m.cookie.Domain,
		MaxAge:   m.cookie.MaxAge,
		Expires:  time.Now().Add(time.Duration(m.cookie.MaxAge) * time.Second),
		SameSite: m.cookie.GetSameSite(),
		Secure:   m.cookie.Secure,
		HttpOnly: m.cookie.HttpOnly,
	})
}
