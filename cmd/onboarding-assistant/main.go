package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/navikt/onboarding-assistant/pkg/auth"
	"github.com/navikt/onboarding-assistant/pkg/config/v2"
	"github.com/navikt/onboarding-assistant/pkg/requestlogger"
	"github.com/navikt/onboarding-assistant/pkg/service/core"
	apiclients "github.com/navikt/onboarding-assistant/pkg/service/core/api"
	"github.com/navikt/onboarding-assistant/pkg/service/core/handlers"
	"github.com/navikt/onboarding-assistant/pkg/service/core/routes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

var (
	configFilePath = flag.String("config", "config.yaml", "path to config file")
	printRoutes    = flag.Bool("print-routes", false, "print the registered routes and exit")
)

const (
	SessionJanitorFrequency = 10 * time.Minute
	ShutdownTimeout         = 5 * time.Second
)

func main() {
	flag.Parse()

	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()

	fileParts, err := config.ProcessConfigPath(*configFilePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("processing config path")
	}

	cfg, err := config.NewFileSystemLoader().Load(fileParts.FileName, fileParts.Path, "ONBOARDING", config.NewDefaultEnvBinder())
	if err != nil {
		zlog.Fatal().Err(err).Msg("loading config")
	}

	err = cfg.Validate()
	if err != nil {
		zlog.Fatal().Err(err).Msg("validating config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		zlog.Fatal().Err(err).Msg("parsing log level")
	}

	zlog = zlog.Level(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout(),
	}

	allowlist := auth.NewAllowlist(cfg.Allowlist.Users, cfg.Allowlist.AllowAllWhenEmpty)
	if allowlist.Len() == 0 {
		if cfg.Allowlist.AllowAllWhenEmpty {
			zlog.Warn().Msg("allowlist is empty, every authenticated user is allowed")
		} else {
			zlog.Warn().Msg("allowlist is empty, every authenticated user will be denied")
		}
	}

	azure := auth.NewAzure(
		cfg.Oauth.ClientID,
		cfg.Oauth.ClientSecret,
		cfg.Oauth.TenantID,
		cfg.Oauth.RedirectURL,
		httpClient,
		zlog.With().Str("subsystem", "azure").Logger(),
	)

	if cfg.Oauth.VerifyIDToken {
		err = azure.EnableIDTokenVerification(ctx)
		if err != nil {
			zlog.Fatal().Err(err).Msg("setting up id token verification")
		}
	}

	sessions := auth.NewSessionStore()
	go auth.NewSessionJanitor(
		sessions,
		cfg.Session.IdleEviction(),
		zlog.With().Str("subsystem", "session_janitor").Logger(),
	).Run(ctx, SessionJanitorFrequency)

	appTokens := auth.NewAppTokenSource(
		cfg.Oauth.TenantID,
		cfg.Oauth.ClientID,
		cfg.Oauth.ClientSecret,
		cfg.Graph.AuthorityHost,
		httpClient,
		zlog.With().Str("subsystem", "app_token").Logger(),
	)

	apiClients := apiclients.NewClients(httpClient, appTokens, cfg, zlog.With().Str("subsystem", "api_clients").Logger())

	logins := core.NewLoginsCounter()
	accessRequests := core.NewAccessRequestsCounter()

	authService := core.NewAuthService(
		azure,
		allowlist,
		cfg.Session.Timeout(),
		cfg.AccessRequest.DefaultSender,
		logins,
		zlog.With().Str("subsystem", "auth_service").Logger(),
	)

	services := core.NewServices(
		authService,
		core.NewAccessRequestService(
			apiClients.AccessRequestAPI,
			apiClients.ApproverNotifierAPI,
			cfg.AccessRequest.To,
			cfg.AccessRequest.DefaultSender,
			cfg.AccessRequest.AllowAnySender,
			cfg.Oauth.RedirectURL,
			accessRequests,
			zlog.With().Str("subsystem", "access_request_service").Logger(),
		),
		core.NewToolsService(authService, apiClients.ToolsAPI),
	)

	h := handlers.NewHandlers(services, sessions)

	sessionMiddleware := auth.NewSessionMiddleware(
		sessions,
		cfg.Cookies.Session,
		zlog.With().Str("subsystem", "session_middleware").Logger(),
	).Handler

	promReg := prom(
		logins,
		accessRequests,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "onboarding_assistant",
			Name:      "sessions",
			Help:      "Number of sessions held in memory.",
		}, func() float64 {
			return float64(sessions.Count())
		}),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestlogger.Middleware(zlog.With().Str("subsystem", "requestlogger").Logger(), "/internal/isalive", "/internal/metrics"))
	router.Use(middleware.Recoverer)

	routes.Add(router,
		routes.NewAuthRoutes(routes.NewAuthEndpoints(zlog, h.AuthHandler), sessionMiddleware),
		routes.NewAccessRequestRoutes(routes.NewAccessRequestEndpoints(zlog, h.AccessRequestHandler), sessionMiddleware),
		routes.NewToolsRoutes(routes.NewToolsEndpoints(zlog, h.ToolsHandler), sessionMiddleware),
		routes.NewMetricsRoutes(routes.NewMetricsEndpoints(promReg)),
		routes.NewHealthRoutes(),
	)

	if *printRoutes {
		err = routes.Print(router, os.Stdout)
		if err != nil {
			zlog.Fatal().Err(err).Msg("printing routes")
		}

		return
	}

	server := http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Address, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zlog.Info().Msgf("listening on %s:%s", cfg.Server.Address, cfg.Server.Port)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("serving http")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Warn().Err(err).Msg("shutdown error")
	}
}

func prom(cols ...prometheus.Collector) *prometheus.Registry {
	r := prometheus.NewRegistry()

	r.MustRegister(collectors.NewGoCollector())
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(cols...)

	return r
}
