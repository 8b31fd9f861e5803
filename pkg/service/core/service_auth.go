package core

import (
	"context"
	"errors"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/navikt/onboarding-assistant/pkg/auth"
	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	LoginFailedMessage       = "Login failed. Please try again."
	LoginClaimsFailedMessage = "Login failed: Could not retrieve email from token."
)

const (
	loginOutcomeAuthenticated = "authenticated"
	loginOutcomeDenied        = "denied"
	loginOutcomeExchangeError = "exchange_error"
	loginOutcomeClaimsError   = "claims_error"
)

var _ service.AuthService = &authService{}

type authService struct {
	exchanger     service.TokenExchanger
	gate          service.AuthorizationGate
	timeout       time.Duration
	defaultSender string
	logins        *prometheus.CounterVec
	log           zerolog.Logger

	now      func() time.Time
	newState func() string
}

func (s *authService) Render(ctx context.Context, sess service.Session, params service.AuthParams) (service.Session, *service.PageView, error) {
	const op errs.Op = "authService.Render"

	sess, expired := auth.CheckExpiry(sess, s.now(), s.timeout)
	if expired {
		s.log.Info().Str("session", sess.ID).Msg("session expired")

		return sess, &service.PageView{
			View:   service.ViewExpired,
			Notice: auth.ExpiredNotice,
		}, nil
	}

	if !sess.LoggedIn && params.Code != "" {
		next, outcome, err := s.HandleAuthFlow(ctx, sess, params)
		if err != nil {
			msg, ok := loginErrorMessage(err)
			if !ok {
				return sess, nil, errs.E(op, err)
			}

			sess, view := s.loginView(sess)
			view.Error = msg

			return sess, view, nil
		}

		sess = next

		if outcome == service.FlowAuthenticated {
			return sess, &service.PageView{
				View:     service.ViewAuthenticated,
				Email:    sess.Email,
				Rerender: true,
			}, nil
		}
	}

	switch {
	case sess.LoggedIn:
		return sess, &service.PageView{
			View:  service.ViewAuthenticated,
			Email: sess.Email,
		}, nil
	case sess.AccessDeniedEmail != "":
		sess, view := s.loginView(sess)
		view.View = service.ViewRequestAccess
		view.DeniedEmail = sess.AccessDeniedEmail
		view.DefaultSender = s.defaultSender

		if view.DefaultSender == "" {
			view.DefaultSender = sess.AccessDeniedEmail
		}

		return sess, view, nil
	default:
		sess, view := s.loginView(sess)

		return sess, view, nil
	}
}

// loginView keeps the state already bound to the session, so rendering the
// page again does not invalidate a sign-in link handed out earlier.
func (s *authService) loginView(sess service.Session) (service.Session, *service.PageView) {
	if sess.OAuthState == "" {
		sess.OAuthState = s.newState()
	}

	return sess, &service.PageView{
		View:     service.ViewLogin,
		LoginURL: s.exchanger.AuthCodeURL(sess.OAuthState),
	}
}

func loginErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrClaims):
		return LoginClaimsFailedMessage, true
	case errors.Is(err, service.ErrExchange):
		return LoginFailedMessage, true
	default:
		return "", false
	}
}

// HandleAuthFlow exchanges the authorization code and applies the
// allowlist. An authenticated session is returned unchanged, so a
// re-render never exchanges the same code twice.
func (s *authService) HandleAuthFlow(ctx context.Context, sess service.Session, params service.AuthParams) (service.Session, service.FlowOutcome, error) {
	const op errs.Op = "authService.HandleAuthFlow"

	if sess.LoggedIn || params.Code == "" {
		return sess, service.FlowSkipped, nil
	}

	if sess.OAuthState != "" && params.State != sess.OAuthState {
		s.logins.WithLabelValues(loginOutcomeExchangeError).Inc()
		s.log.Info().Str("session", sess.ID).Msg("oauth state mismatch")

		return sess, service.FlowSkipped, errs.E(errs.Unauthenticated, op, errs.Parameter("state"), service.ErrExchange)
	}

	result, err := s.exchanger.Exchange(ctx, params.Code)
	if err != nil {
		s.logins.WithLabelValues(loginOutcome(err)).Inc()

		return sess, service.FlowSkipped, errs.E(op, err)
	}

	email := result.Claims.UserEmail()
	if email == "" {
		s.logins.WithLabelValues(loginOutcomeClaimsError).Inc()

		return sess, service.FlowSkipped, errs.E(errs.Unauthenticated, op, service.ErrClaims)
	}

	next := sess
	next.OAuthState = ""

	if s.gate.Authorize(email) == service.Denied {
		s.logins.WithLabelValues(loginOutcomeDenied).Inc()
		s.log.Info().Str("email", email).Msg("principal not on allowlist")

		next.AccessDeniedEmail = email

		return next, service.FlowDenied, nil
	}

	next.LoggedIn = true
	next.Token = result.AccessToken
	next.Email = email
	next.LoginTime = s.now()
	next.AccessDeniedEmail = ""

	if !next.Valid() {
		return sess, service.FlowSkipped, errs.E(errs.Internal, op, errs.Str("token present iff logged in"))
	}

	s.logins.WithLabelValues(loginOutcomeAuthenticated).Inc()
	s.log.Info().Str("email", email).Msg("user signed in")

	return next, service.FlowAuthenticated, nil
}

func loginOutcome(err error) string {
	if errors.Is(err, service.ErrClaims) {
		return loginOutcomeClaimsError
	}

	return loginOutcomeExchangeError
}

// LoginURL starts a fresh attempt and always rotates the state.
func (s *authService) LoginURL(_ context.Context, sess service.Session) (service.Session, string, error) {
	sess.OAuthState = ""
	sess, view := s.loginView(sess)

	return sess, view.LoginURL, nil
}

func (s *authService) Logout(_ context.Context, sess service.Session) (service.Session, error) {
	if sess.LoggedIn {
		s.log.Info().Str("email", sess.Email).Msg("user signed out")
	}

	return sess.Anonymous(), nil
}

func (s *authService) RequireAuthenticated(_ context.Context, sess service.Session) (service.Session, error) {
	const op errs.Op = "authService.RequireAuthenticated"

	sess, expired := auth.CheckExpiry(sess, s.now(), s.timeout)

	switch {
	case expired:
		s.log.Info().Str("session", sess.ID).Msg("session expired")

		return sess, errs.E(errs.Unauthenticated, op, errs.Str("session expired"))
	case sess.LoggedIn:
		return sess, nil
	case sess.AccessDeniedEmail != "":
		return sess, errs.E(errs.Unauthorized, op, service.ErrAccessDenied)
	default:
		return sess, errs.E(errs.Unauthenticated, op, errs.Str("not signed in"))
	}
}

func NewAuthService(
	exchanger service.TokenExchanger,
	gate service.AuthorizationGate,
	timeout time.Duration,
	defaultSender string,
	logins *prometheus.CounterVec,
	log zerolog.Logger,
) *authService {
	return &authService{
		exchanger:     exchanger,
		gate:          gate,
		timeout:       timeout,
		defaultSender: defaultSender,
		logins:        logins,
		log:           log,
		now:           time.Now,
		newState:      shortuuid.New,
	}
}

// NewLoginsCounter counts sign-in attempts by outcome.
func NewLoginsCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onboarding_assistant",
		Name:      "logins_total",
		Help:      "Sign-in attempts by outcome.",
	}, []string{"outcome"})
}
