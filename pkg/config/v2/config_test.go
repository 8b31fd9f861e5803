package config_test

import (
	"flag"
	"os"
	"testing"

	"github.com/navikt/onboarding-assistant/pkg/config/v2"

	"github.com/google/go-cmp/cmp"

	"gopkg.in/yaml.v3"
)

var update = flag.Bool("update", false, "update golden files")

func newFakeConfig() config.Config {
	return config.Config{
		Oauth: config.Oauth{
			ClientID:     "fake_client_id",
			ClientSecret: "fake_client_secret",
			TenantID:     "fake_tenant_id",
			RedirectURL:  "http://localhost:8501",
		},
		Session: config.Session{
			TimeoutSeconds:      3600,
			IdleEvictionSeconds: 86400,
		},
		Allowlist: config.Allowlist{
			Users: []string{"a@example.com", "b@example.com"},
		},
		AccessRequest: config.AccessRequest{
			To:            "approver@example.com",
			DefaultSender: "sender@example.com",
		},
		Graph: config.Graph{
			BaseURL:       "http://localhost:8090/v1.0",
			AuthorityHost: "http://localhost:8091/",
		},
		Slack: config.Slack{
			Token:   "fake_token",
			Channel: "#onboarding-approvers",
		},
		Tools: config.Tools{
			ServerURL: "http://localhost:8092/mcp",
		},
		Server: config.Server{
			Hostname: "localhost",
			Address:  "127.0.0.1",
			Port:     "8080",
		},
		Cookies: config.Cookies{
			Session: config.CookieSettings{
				Name:     "onboarding_session",
				MaxAge:   86400,
				Path:     "/",
				Domain:   "localhost",
				SameSite: "Lax",
				Secure:   false,
				HttpOnly: true,
			},
		},
		LogLevel:           "info",
		HTTPTimeoutSeconds: 30,
		Debug:              false,
	}
}

func newMinimalConfig() config.Config {
	return config.Config{
		Oauth: config.Oauth{
			ClientID:     "fake_client_id",
			ClientSecret: "fake_client_secret",
			TenantID:     "fake_tenant_id",
			RedirectURL:  config.DefaultRedirectURL,
		},
		Session: config.Session{
			TimeoutSeconds:      config.DefaultSessionTimeoutSec,
			IdleEvictionSeconds: config.DefaultIdleEvictionSec,
		},
		Allowlist: config.Allowlist{
			Users: config.DefaultAllowedUsers,
		},
		AccessRequest: config.AccessRequest{
			To: config.DefaultAccessRequestTo,
		},
		Graph: config.Graph{
			BaseURL: config.DefaultGraphBaseURL,
		},
		Server: config.Server{
			Hostname: "localhost",
			Address:  "0.0.0.0",
			Port:     "8080",
		},
		Cookies: config.Cookies{
			Session: config.CookieSettings{
				Name:     config.DefaultSessionCookieName,
				MaxAge:   config.DefaultSessionCookieMaxAge,
				Path:     config.DefaultSessionCookiePath,
				SameSite: config.DefaultSessionCookieSameSite,
				HttpOnly: true,
			},
		},
		LogLevel:           "info",
		HTTPTimeoutSeconds: config.DefaultHTTPTimeoutSec,
	}
}

func updateGoldenFiles(t *testing.T, filePath string, cfg config.Config) []byte {
	t.Helper()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Errorf("marshal config: %v", err)
	}

	err = os.WriteFile(filePath, data, 0o600)
	if err != nil {
		t.Errorf("write golden file: %v", err)
	}

	return data
}

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		config    config.Config
		expectErr bool
	}{
		{
			name:      "Valid config",
			config:    newFakeConfig(),
			expectErr: false,
		},
		{
			name:      "Valid config with defaults only",
			config:    newMinimalConfig(),
			expectErr: false,
		},
		{
			name: "Missing client id",
			config: func() config.Config {
				cfg := newFakeConfig()
				cfg.Oauth.ClientID = ""

				return cfg
			}(),
			expectErr: true,
		},
		{
			name: "Allowlist entry is not an email",
			config: func() config.Config {
				cfg := newFakeConfig()
				cfg.Allowlist.Users = []string{"@example.com"}

				return cfg
			}(),
			expectErr: true,
		},
		{
			name: "Slack token without channel",
			config: func() config.Config {
				cfg := newFakeConfig()
				cfg.Slack.Channel = ""

				return cfg
			}(),
			expectErr: true,
		},
		{
			name: "Unknown log level",
			config: func() config.Config {
				cfg := newFakeConfig()
				cfg.LogLevel = "verbose"

				return cfg
			}(),
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if err != nil && !tc.expectErr {
				t.Errorf("unexpected error: %v", err)
			}

			if err == nil && tc.expectErr {
				t.Errorf("expected error, got none")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	if *update {
		t.Log("Updating golden files")
		updateGoldenFiles(t, "testdata/config.yaml", newFakeConfig())
		t.Log("Done updating golden files")

		return
	}

	testCases := []struct {
		name      string
		config    string
		path      string
		envPrefix string
		loader    config.Loader
		binder    config.Binder
		envs      map[string]string
		expect      config.Config
		expectErr   bool
		expectValid bool
	}{
		{
			name:      "Standard config",
			config:    "config",
			path:      "testdata",
			loader:    config.NewFileSystemLoader(),
			expect:    newFakeConfig(),
			expectErr: false,
		},
		{
			name:   "Minimal config falls back to defaults",
			config: "minimal",
			path:   "testdata",
			loader: config.NewFileSystemLoader(),
			expect: newMinimalConfig(),
		},
		{
			name:   "Standard config with env overrides",
			config: "config",
			path:   "testdata",
			loader: config.NewFileSystemLoader(),
			expect: func() config.Config {
				cfg := newFakeConfig()
				cfg.Server.Address = "example.com"

				return cfg
			}(),
			envs: map[string]string{
				"SERVER_ADDRESS": "example.com",
			},
		},
		{
			name:      "Standard config with env prefix overrides",
			config:    "config",
			path:      "testdata",
			envPrefix: "onboarding",
			loader:    config.NewFileSystemLoader(),
			expect: func() config.Config {
				cfg := newFakeConfig()
				cfg.Server.Address = "example.com"

				return cfg
			}(),
			envs: map[string]string{
				"ONBOARDING_SERVER_ADDRESS": "example.com",
			},
		},
		{
			name:   "Default env binder",
			config: "minimal",
			path:   "testdata",
			loader: config.NewFileSystemLoader(),
			binder: config.NewDefaultEnvBinder(),
			expect: func() config.Config {
				cfg := newMinimalConfig()
				cfg.Oauth.ClientID = "env_client_id"
				cfg.Oauth.ClientSecret = "env_client_secret"
				cfg.Oauth.TenantID = "env_tenant_id"
				cfg.Oauth.RedirectURL = "https://onboarding.example.com"
				cfg.Session.TimeoutSeconds = 60
				cfg.Allowlist.Users = []string{"a@x.com", "b@y.com"}
				cfg.AccessRequest.To = "approver@x.com"
				cfg.AccessRequest.DefaultSender = "bot@x.com"

				return cfg
			}(),
			envs: map[string]string{
				"AZURE_CLIENT_ID":     "env_client_id",
				"AZURE_CLIENT_SECRET": "env_client_secret",
				"AZURE_TENANT_ID":     "env_tenant_id",
				"AAD_REDIRECT_URI":    "https://onboarding.example.com",
				"SESSION_TIMEOUT_SEC": "60",
				"ALLOWED_USERS":       "a@x.com,b@y.com",
				"ACCESS_REQUEST_TO":   "approver@x.com",
				"DEFAULT_SENDER_UPN":  "bot@x.com",
			},
		},
		{
			name:   "Allowed users with spaces and mixed case",
			config: "minimal",
			path:   "testdata",
			loader: config.NewFileSystemLoader(),
			binder: config.NewDefaultEnvBinder(),
			expect: func() config.Config {
				cfg := newMinimalConfig()
				cfg.Allowlist.Users = []string{"a@x.com", "b@y.com"}

				return cfg
			}(),
			envs: map[string]string{
				"ALLOWED_USERS": " a@x.com, B@y.com ,",
			},
			expectValid: true,
		},
		{
			name:   "Blank allowed users fall back to defaults",
			config: "minimal",
			path:   "testdata",
			loader: config.NewFileSystemLoader(),
			binder: config.NewDefaultEnvBinder(),
			expect: newMinimalConfig(),
			envs: map[string]string{
				"ALLOWED_USERS": " , ",
			},
			expectValid: true,
		},
		{
			name:      "Missing config file",
			config:    "does-not-exist",
			path:      "testdata",
			loader:    config.NewFileSystemLoader(),
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.envs {
				t.Setenv(k, v)
			}

			cfg, err := tc.loader.Load(tc.config, tc.path, tc.envPrefix, tc.binder)
			if err != nil && !tc.expectErr {
				t.Errorf("unexpected error: %v", err)
			}

			if err == nil && tc.expectErr {
				t.Errorf("expected error, got none")
			}

			if !tc.expectErr {
				if diff := cmp.Diff(tc.expect, cfg); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
			}

			if tc.expectValid {
				if err := cfg.Validate(); err != nil {
					t.Errorf("expected loaded config to validate, got: %v", err)
				}
			}
		})
	}
}

func TestLoadExampleConfig(t *testing.T) {
	t.Setenv("AZURE_CLIENT_ID", "env_client_id")
	t.Setenv("AZURE_CLIENT_SECRET", "env_client_secret")
	t.Setenv("AZURE_TENANT_ID", "env_tenant_id")

	cfg, err := config.NewFileSystemLoader().Load("config.example", "../../..", "onboarding", config.NewDefaultEnvBinder())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("example config does not validate: %v", err)
	}

	if diff := cmp.Diff(config.DefaultAllowedUsers, cfg.Allowlist.Users); diff != "" {
		t.Errorf("allowlist mismatch (-want +got):\n%s", diff)
	}

	if cfg.Allowlist.AllowAllWhenEmpty {
		t.Errorf("expected an empty allowlist to deny by default")
	}
}

func TestProcessConfigPath(t *testing.T) {
	got, err := config.ProcessConfigPath("testdata/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.FileName != "config" {
		t.Errorf("expected file name config, got %s", got.FileName)
	}

	_, err = config.ProcessConfigPath("testdata/config.json")
	if err == nil {
		t.Errorf("expected error for non-yaml extension")
	}
}
