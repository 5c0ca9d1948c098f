// Package config loads and validates application configuration. The result
// is an immutable value threaded at construction; there are no process-wide
// configuration singletons.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingRequired indicates required configuration keys are absent.
var ErrMissingRequired = errors.New("config: required settings missing")

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Mail      MailConfig
	Commerce  CommerceConfig
	Sync      SyncConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
}

// MailConfig holds the mail provider token bundle. Owned exclusively by the
// mail adapter after construction.
type MailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	RedirectURI  string
}

// CommerceConfig holds the commerce platform store handle and admin token.
// Owned exclusively by the fulfillment adapter after construction.
type CommerceConfig struct {
	Store       string
	AccessToken string
	APIVersion  string
}

// SyncConfig holds reconciliation window settings.
type SyncConfig struct {
	// PartnerSender is the fulfillment partner's sender address.
	PartnerSender string
	// LookbackDays is how far back mail is listed.
	LookbackDays int
	// BatchLimit caps the number of messages per listing.
	BatchLimit int
	// CallTimeout is the per-adapter-call deadline.
	CallTimeout time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// Load loads configuration from an optional TOML file and environment
// variables. Environment variables win; credentials use the exact names the
// deployment supplies (MAIL_CLIENT_ID, COMMERCE_STORE, ...).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, defaults and env vars apply.
	}

	setDefaults(v)
	bindEnv(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
		},
		Mail: MailConfig{
			ClientID:     v.GetString("mail.client_id"),
			ClientSecret: v.GetString("mail.client_secret"),
			RefreshToken: v.GetString("mail.refresh_token"),
			RedirectURI:  v.GetString("mail.redirect_uri"),
		},
		Commerce: CommerceConfig{
			Store:       v.GetString("commerce.store"),
			AccessToken: v.GetString("commerce.access_token"),
			APIVersion:  v.GetString("commerce.api_version"),
		},
		Sync: SyncConfig{
			PartnerSender: v.GetString("sync.partner_sender"),
			LookbackDays:  v.GetInt("sync.lookback_days"),
			BatchLimit:    v.GetInt("sync.batch_limit"),
			CallTimeout:   v.GetDuration("sync.call_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required credential is present.
func (c *Config) Validate() error {
	var missing []string
	if c.Mail.ClientID == "" {
		missing = append(missing, "MAIL_CLIENT_ID")
	}
	if c.Mail.ClientSecret == "" {
		missing = append(missing, "MAIL_CLIENT_SECRET")
	}
	if c.Mail.RefreshToken == "" {
		missing = append(missing, "MAIL_REFRESH_TOKEN")
	}
	if c.Commerce.Store == "" {
		missing = append(missing, "COMMERCE_STORE")
	}
	if c.Commerce.AccessToken == "" {
		missing = append(missing, "COMMERCE_ACCESS_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "glowlab-admin")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.idle_timeout", 120*time.Second)
	v.SetDefault("http.rate_limit_enabled", true)
	v.SetDefault("http.rate_limit_requests", 30)
	v.SetDefault("http.rate_limit_window", time.Minute)

	v.SetDefault("sync.partner_sender", "order@korealy")
	v.SetDefault("sync.lookback_days", 90)
	v.SetDefault("sync.batch_limit", 500)
	v.SetDefault("sync.call_timeout", 30*time.Second)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetDefault("telemetry.service_name", "glowlab-admin")
}

// bindEnv maps viper keys to the exact environment variable names the
// deployment uses.
func bindEnv(v *viper.Viper) {
	binds := map[string]string{
		"mail.client_id":        "MAIL_CLIENT_ID",
		"mail.client_secret":    "MAIL_CLIENT_SECRET",
		"mail.refresh_token":    "MAIL_REFRESH_TOKEN",
		"mail.redirect_uri":     "MAIL_REDIRECT_URI",
		"commerce.store":        "COMMERCE_STORE",
		"commerce.access_token": "COMMERCE_ACCESS_TOKEN",
		"sync.partner_sender":   "PARTNER_SENDER_ADDRESS",
		"sync.lookback_days":    "LOOKBACK_DAYS",
		"sync.batch_limit":      "BATCH_LIMIT",
		"app.port":              "PORT",
		"log.level":             "LOG_LEVEL",
	}
	for key, env := range binds {
		_ = v.BindEnv(key, env)
	}
}
