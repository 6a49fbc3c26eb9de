// Package config manages environment variables.
//
// It reads variables (optionally from a `.env` file), loads them into
// structured Go types and validates that required values are present so the
// application fails fast on bad or missing configuration.
//
// Env vars use the BUDGETBUD_ prefix and a double underscore for nesting:
//
//	BUDGETBUD_SERVER__PORT          -> server.port
//	BUDGETBUD_AUTH__ACCESS_TOKEN_TTL -> auth.access_token_ttl
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	// Embedded zoneinfo so the scheduler timezone resolves in slim containers.
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "BUDGETBUD_"

// Config is the root configuration object for the application.
//
// Observability, Scheduler and Email are optional blocks; every field that is
// not set keeps its default.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Email         *EmailConfig         `koanf:"email"`
	Scheduler     *SchedulerConfig     `koanf:"scheduler"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime. Timeouts are seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// DSN builds the postgres:// connection string. The password is escaped.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// RedisConfig contains Redis connection details. Address is "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores token signing secrets and lifetimes.
type AuthConfig struct {
	SecretKey       string        `koanf:"secret_key" validate:"required,min=32"`
	AccessTokenTTL  time.Duration `koanf:"access_token_ttl"`
	RefreshTokenTTL time.Duration `koanf:"refresh_token_ttl"`
	CookieDomain    string        `koanf:"cookie_domain"`
	// InsecureCookies drops the Secure flag, for plain-http local development only.
	InsecureCookies bool `koanf:"insecure_cookies"`
}

// EmailConfig configures the outgoing mail provider.
type EmailConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	FromName     string `koanf:"from_name" validate:"required"`
	FromAddress  string `koanf:"from_address" validate:"required,email"`
	// FrontendURL is used to build links inside e-mails (invitation acceptance, dashboards).
	FrontendURL string `koanf:"frontend_url" validate:"required,url"`
}

// SchedulerConfig holds the cron specs of the periodic jobs.
type SchedulerConfig struct {
	Enabled             bool   `koanf:"enabled"`
	Timezone            string `koanf:"timezone" validate:"required"`
	BudgetGoalsSpec     string `koanf:"budget_goals_spec" validate:"required"`
	SavingsGoalsSpec    string `koanf:"savings_goals_spec" validate:"required"`
	RecurringSpec       string `koanf:"recurring_spec" validate:"required"`
	InvitationCleanSpec string `koanf:"invitation_clean_spec" validate:"required"`
}

// DefaultEmailConfig is used when no email block is configured.
func DefaultEmailConfig() *EmailConfig {
	return &EmailConfig{
		FromName:    "BudgetBud",
		FromAddress: "onboarding@resend.dev",
		FrontendURL: "http://localhost:3000",
	}
}

// DefaultSchedulerConfig mirrors the daily 21:00 goal checks.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Enabled:             true,
		Timezone:            "America/New_York",
		BudgetGoalsSpec:     "0 21 * * *",
		SavingsGoalsSpec:    "0 21 * * *",
		RecurringSpec:       "5 0 * * *",
		InvitationCleanSpec: "@hourly",
	}
}

// Location resolves the scheduler timezone.
func (s *SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// envKey maps BUDGETBUD_SERVER__READ_TIMEOUT to server.read_timeout.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// LoadConfig loads configuration from environment variables, validates it,
// applies defaults and returns it.
func LoadConfig() (*Config, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := load()
	if err != nil {
		logger.Error().Err(err).Msg("could not load configuration")
		return nil, err
	}

	return cfg, nil
}

func load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env variables: %w", err)
	}

	// Optional blocks start from their defaults; koanf only overwrites the
	// keys that are actually set. Comma separated values decode into slices.
	mainConfig := &Config{
		Email:         DefaultEmailConfig(),
		Scheduler:     DefaultSchedulerConfig(),
		Observability: DefaultObservabilityConfig(),
	}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	mainConfig.applyDefaults()

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	if _, err := mainConfig.Scheduler.Location(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = 30 * time.Minute
	}
	if c.Auth.RefreshTokenTTL == 0 {
		c.Auth.RefreshTokenTTL = 7 * 24 * time.Hour
	}

	// Service name and environment always follow the primary config.
	c.Observability.ServiceName = "budgetbud"
	c.Observability.Environment = c.Primary.Env
}

// IsLocal reports whether the app runs in the local environment.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
