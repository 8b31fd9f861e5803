package config

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-ozzo/ozzo-validation/v4/is"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mitchellh/mapstructure"

	"github.com/spf13/viper"
)

const (
	defaultExtension = "yaml"
	defaultTagName   = "yaml"
)

const (
	DefaultRedirectURL           = "http://localhost:8501"
	DefaultSessionTimeoutSec     = 3600
	DefaultIdleEvictionSec       = 24 * 60 * 60
	DefaultHTTPTimeoutSec        = 30
	DefaultGraphBaseURL          = "https://graph.microsoft.com/v1.0"
	DefaultAccessRequestTo       = "guru.km@sonata-software.com"
	DefaultSessionCookieName     = "onboarding_session"
	DefaultSessionCookieMaxAge   = 86400
	DefaultSessionCookiePath     = "/"
	DefaultSessionCookieSameSite = "Lax"
)

// DefaultAllowedUsers is used when ALLOWED_USERS is not set.
var DefaultAllowedUsers = []string{
	"guru.km@sonata-software.com",
	"rpa.uat.bot1@sonata-software.com",
}

type Binder interface {
	Bind(v *viper.Viper) error
}

type Loader interface {
	Load(name, path, envPrefix string, binder Binder) (Config, error)
}

type Config struct {
	Oauth         Oauth         `yaml:"oauth"`
	Session       Session       `yaml:"session"`
	Allowlist     Allowlist     `yaml:"allowlist"`
	AccessRequest AccessRequest `yaml:"access_request"`
	Graph         Graph         `yaml:"graph"`
	Slack         Slack         `yaml:"slack"`
	Tools         Tools         `yaml:"tools"`
	Server        Server        `yaml:"server"`
	Cookies       Cookies       `yaml:"cookies"`

	LogLevel           string `yaml:"log_level"`
	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
	Debug              bool   `yaml:"debug"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Oauth, validation.Required),
		validation.Field(&c.Session, validation.Required),
		validation.Field(&c.Allowlist),
		validation.Field(&c.AccessRequest, validation.Required),
		validation.Field(&c.Graph, validation.Required),
		validation.Field(&c.Slack),
		validation.Field(&c.Tools),
		validation.Field(&c.Server, validation.Required),
		validation.Field(&c.Cookies, validation.Required),
		validation.Field(&c.LogLevel, validation.Required, validation.In("trace", "debug", "info", "warn", "error")),
		validation.Field(&c.HTTPTimeoutSeconds, validation.Required, validation.Min(1)),
	)
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

type Oauth struct {
	ClientID      string `yaml:"client_id"`
	ClientSecret  string `yaml:"client_secret"`
	TenantID      string `yaml:"tenant_id"`
	RedirectURL   string `yaml:"redirect_url"`
	VerifyIDToken bool   `yaml:"verify_id_token"`
}

func (o Oauth) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.ClientID, validation.Required),
		validation.Field(&o.ClientSecret, validation.Required),
		validation.Field(&o.TenantID, validation.Required),
		validation.Field(&o.RedirectURL, validation.Required, is.URL),
	)
}

type Session struct {
	TimeoutSeconds      int `yaml:"timeout_seconds"`
	IdleEvictionSeconds int `yaml:"idle_eviction_seconds"`
}

func (s Session) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.TimeoutSeconds, validation.Required, validation.Min(1)),
		validation.Field(&s.IdleEvictionSeconds, validation.Required, validation.Min(1)),
	)
}

func (s Session) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func (s Session) IdleEviction() time.Duration {
	return time.Duration(s.IdleEvictionSeconds) * time.Second
}

// Allowlist holds the users allowed past the login gate. An empty list
// denies everyone unless AllowAllWhenEmpty is set.
type Allowlist struct {
	Users             []string `yaml:"users"`
	AllowAllWhenEmpty bool     `yaml:"allow_all_when_empty"`
}

func (a Allowlist) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Users, validation.Each(is.EmailFormat)),
	)
}

type AccessRequest struct {
	To             string `yaml:"to"`
	DefaultSender  string `yaml:"default_sender"`
	AllowAnySender bool   `yaml:"allow_any_sender"`
}

func (a AccessRequest) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.To, validation.Required, is.EmailFormat),
		validation.Field(&a.DefaultSender, is.EmailFormat),
	)
}

type Graph struct {
	BaseURL       string `yaml:"base_url"`
	AuthorityHost string `yaml:"authority_host"`
}

func (g Graph) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.BaseURL, validation.Required, is.URL),
		validation.Field(&g.AuthorityHost, is.URL),
	)
}

// Slack is optional, the approver notice is skipped when the token is empty.
type Slack struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

func (s Slack) Enabled() bool {
	return s.Token != "" && s.Channel != ""
}

func (s Slack) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Channel, validation.When(s.Token != "", validation.Required)),
	)
}

type Tools struct {
	ServerURL string `yaml:"server_url"`
}

func (t Tools) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ServerURL, is.URL),
	)
}

type Server struct {
	Hostname string `yaml:"hostname"`
	Address  string `yaml:"address"`
	Port     string `yaml:"port"`
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required, is.IP),
		validation.Field(&s.Hostname, validation.Required, is.Host),
		validation.Field(&s.Port, validation.Required, is.Port),
	)
}

type Cookies struct {
	Session CookieSettings `yaml:"session"`
}

func (c Cookies) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Session, validation.Required),
	)
}

type CookieSettings struct {
	Name     string `yaml:"name"`
	MaxAge   int    `yaml:"max_age"`
	Path     string `yaml:"path"`
	Domain   string `yaml:"domain"`
	SameSite string `yaml:"same_site"`
	Secure   bool   `yaml:"secure"`
	HttpOnly bool   `yaml:"http_only"`
}

func (c CookieSettings) GetSameSite() http.SameSite {
	switch c.SameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "Lax":
		return http.SameSiteLaxMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}

func (c CookieSettings) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.MaxAge, validation.Required),
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Domain, is.Host),
		// Valid SameSite values:
		// - https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Set-Cookie#samesitesamesite-value
		validation.Field(&c.SameSite, validation.Required, validation.In("Strict", "Lax", "None")),
	)
}

type FileParts struct {
	FileName string
	Path     string
}

func ProcessConfigPath(configFile string) (FileParts, error) {
	absolutePath, err := filepath.Abs(configFile)
	if err != nil {
		return FileParts{}, fmt.Errorf("convert to absolute path: %w", err)
	}

	fileName := filepath.Base(absolutePath)
	path := filepath.Dir(absolutePath)
	extension := filepath.Ext(fileName)

	if strings.ReplaceAll(strings.ToLower(extension), ".", "") != defaultExtension {
		return FileParts{}, fmt.Errorf("config file must have extension %s, got: %s", defaultExtension, extension)
	}

	return FileParts{
		FileName: fileName[:len(fileName)-len(extension)],
		Path:     path,
	}, nil
}

// SetDefaults registers the values used when neither the file nor the
// environment sets a key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("oauth.redirect_url", DefaultRedirectURL)
	v.SetDefault("session.timeout_seconds", DefaultSessionTimeoutSec)
	v.SetDefault("session.idle_eviction_seconds", DefaultIdleEvictionSec)
	v.SetDefault("allowlist.users", DefaultAllowedUsers)
	v.SetDefault("access_request.to", DefaultAccessRequestTo)
	v.SetDefault("graph.base_url", DefaultGraphBaseURL)
	v.SetDefault("http_timeout_seconds", DefaultHTTPTimeoutSec)
	v.SetDefault("log_level", "info")
	v.SetDefault("server.hostname", "localhost")
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("cookies.session.name", DefaultSessionCookieName)
	v.SetDefault("cookies.session.max_age", DefaultSessionCookieMaxAge)
	v.SetDefault("cookies.session.path", DefaultSessionCookiePath)
	v.SetDefault("cookies.session.same_site", DefaultSessionCookieSameSite)
	v.SetDefault("cookies.session.http_only", true)
}

func NewFileSystemLoader() *FileSystemLoader {
	return &FileSystemLoader{}
}

type FileSystemLoader struct{}

func (fs *FileSystemLoader) Load(name, path, envPrefix string, b Binder) (Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName(name)
	v.SetConfigType(defaultExtension)

	SetDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // So that env vars are translated properly
	v.AutomaticEnv()

	if b != nil {
		err := b.Bind(v)
		if err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix(envPrefix)

	err := v.ReadInConfig()
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var config Config

	err = v.Unmarshal(&config, func(cfg *mapstructure.DecoderConfig) {
		cfg.TagName = defaultTagName // We use yaml tags in the config structs so we can marshal to yaml
	})
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	config.Allowlist.Users = normalizeUsers(config.Allowlist.Users)

	return config, nil
}

// normalizeUsers trims and lowercases the entries of a comma separated
// allowlist. A list that only held blanks falls back to DefaultAllowedUsers.
func normalizeUsers(raw []string) []string {
	if len(raw) == 0 {
		return raw
	}

	users := make([]string, 0, len(raw))
	for _, u := range raw {
		u = strings.ToLower(strings.TrimSpace(u))
		if u == "" {
			continue
		}
		users = append(users, u)
	}

	if len(users) == 0 {
		return append([]string(nil), DefaultAllowedUsers...)
	}

	return users
}

type EnvBinder struct {
	binders map[string]string
}

func (e *EnvBinder) Bind(v *viper.Viper) error {
	for envVar, key := range e.binders {
		err := v.BindEnv(key, envVar)
		if err != nil {
			return fmt.Errorf("bind env var %s to key %s: %w", envVar, key, err)
		}
	}

	return nil
}

func NewEnvBinder(binders map[string]string) *EnvBinder {
	return &EnvBinder{
		binders: binders,
	}
}

func NewDefaultEnvBinder() *EnvBinder {
	return NewEnvBinder(map[string]string{
		"AZURE_CLIENT_ID":     "oauth.client_id",
		"AZURE_CLIENT_SECRET": "oauth.client_secret",
		"AZURE_TENANT_ID":     "oauth.tenant_id",
		"AAD_REDIRECT_URI":    "oauth.redirect_url",
		"SESSION_TIMEOUT_SEC": "session.timeout_seconds",
		"ALLOWED_USERS":       "allowlist.users",
		"ACCESS_REQUEST_TO":   "access_request.to",
		"DEFAULT_SENDER_UPN":  "access_request.default_sender",
	})
}
