// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the LEARNHUB_ prefix. A double underscore marks a
	nesting level, single underscores stay part of the key:

		LEARNHUB_SERVER__READ_TIMEOUT   -> server.read_timeout
		LEARNHUB_DATABASE__MAX_CONNS    -> database.max_conns
		LEARNHUB_PRIMARY__ENV           -> primary.env

	The plain DATABASE_URL and PORT variables used by most hosting platforms
	are honored as well and win over the prefixed form.
*/

// EnvPrefix is the prefix every application env var carries.
const EnvPrefix = "LEARNHUB_"

// Router variants the HTTP layer can be served with.
const (
	RouterEcho = "echo"
	RouterChi  = "chi"
)

// Auth providers.
const (
	AuthProviderClerk  = "clerk"
	AuthProviderHeader = "header"
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf should map values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Jobs          JobsConfig           `koanf:"jobs" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	Router             string   `koanf:"router" validate:"required,oneof=echo chi"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is the sustained number of requests per second allowed per client IP.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
//
// URL takes precedence over the discrete fields when set, so either
// DATABASE_URL or the host/user/... group must be present.
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	Host            string `koanf:"host" validate:"required_without=URL"`
	Port            int    `koanf:"port" validate:"required_without=URL"`
	User            string `koanf:"user" validate:"required_without=URL"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required_without=URL"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxConns        int32  `koanf:"max_conns" validate:"gte=1"`
	MinConns        int32  `koanf:"min_conns" validate:"gte=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"gte=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"gte=0"`
	AutoMigrate     bool   `koanf:"auto_migrate"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores authentication settings.
//
// Provider "header" trusts the X-User-ID request header and is refused
// outside the local environment.
type AuthConfig struct {
	Provider  string `koanf:"provider" validate:"required,oneof=clerk header"`
	SecretKey string `koanf:"secret_key" validate:"required_if=Provider clerk"`
}

// IntegrationConfig holds third-party API credentials.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`

	// AppURL is the frontend base URL used for links in emails.
	AppURL string `koanf:"app_url"`
}

// JobsConfig tunes the background worker.
type JobsConfig struct {
	Concurrency       int    `koanf:"concurrency" validate:"gte=1"`
	ReconcileSchedule string `koanf:"reconcile_schedule" validate:"required"`
}

// DSN returns the PostgreSQL connection string for this config.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return buildDSN(d)
}

// defaultConfig is the base the environment is unmarshalled over.
// Keys absent from the environment keep these values.
func defaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8080",
			Router:             RouterEcho,
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"http://localhost:5173"},
			RateLimit:          20,
		},
		Database: DatabaseConfig{
			SSLMode:         "disable",
			MaxConns:        10,
			MinConns:        1,
			ConnMaxLifetime: 3600,
			ConnMaxIdleTime: 300,
		},
		Redis: RedisConfig{Address: "localhost:6379"},
		Auth:  AuthConfig{Provider: AuthProviderClerk},
		Integration: IntegrationConfig{
			EmailFrom: "LearnHub <onboarding@resend.dev>",
			AppURL:    "http://localhost:5173",
		},
		Jobs: JobsConfig{
			Concurrency:       10,
			ReconcileSchedule: "@daily",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// listKeys are the comma-separated env variables that map onto []string
// fields. koanf hands env values over as plain strings, so they are split
// before unmarshalling.
var listKeys = map[string]bool{
	"server.cors_allowed_origins":        true,
	"observability.health_checks.checks": true,
}

// splitList splits a comma-separated value, trimming blanks and dropping
// empty entries.
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config structs, validates it, applies defaults, and returns the resulting config.
//
// Behavior summary:
//   - Loads env vars with prefix LEARNHUB_ ("__" separates nesting levels)
//   - Loads DATABASE_URL and PORT on top
//   - Unmarshals over defaultConfig()
//   - Validates required config blocks/fields
//   - Sets default observability if missing, then validates it
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__", ".")
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load prefixed env variables: %w", err)
	}

	// Platform-style variables. Returning "" for a key makes koanf skip it.
	err = k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		switch key {
		case "DATABASE_URL":
			return "database.url", value
		case "PORT":
			return "server.port", value
		}
		return "", nil
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load platform env variables: %w", err)
	}

	mainConfig := defaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Auth.Provider == AuthProviderHeader && mainConfig.Primary.Env != "local" {
		return nil, fmt.Errorf("auth provider %q is only allowed in the local environment", AuthProviderHeader)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed, environment always follows primary.env so logs
	// and traces agree on both.
	mainConfig.Observability.ServiceName = "learnhub"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// MustLoadConfig is LoadConfig for process entrypoints: it prints the error and exits.
func MustLoadConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}
