package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is the development signing secret. Production refuses it.
const DefaultJWTSecret = "dev_secret"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	SMS       SMSConfig       `mapstructure:"sms"`
	Backfill  BackfillConfig  `mapstructure:"backfill"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"` // "development" or "production"
	CORSOrigins    []string `mapstructure:"cors_origins"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Mode == "production"
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // "sqlite" or "postgres"
	DSN             string `mapstructure:"dsn"`               // Connection string
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // Maximum idle connections (Postgres)
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // Maximum open connections (Postgres)
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // Connection max lifetime in minutes (Postgres)
	LogLevel        string `mapstructure:"log_level"`         // GORM log level; defaults to log.level
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
	CookieName    string `mapstructure:"cookie_name"`
	ReturnOTP     bool   `mapstructure:"return_otp"` // echo OTP codes in responses (testing only)
	OTPTTLSeconds int    `mapstructure:"otp_ttl_seconds"`
}

// TokenTTL returns the JWT lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// OTPTTL returns how long a one-time code stays valid.
func (a AuthConfig) OTPTTL() time.Duration {
	return time.Duration(a.OTPTTLSeconds) * time.Second
}

// QueueConfig holds job queue configuration
type QueueConfig struct {
	Type       string `mapstructure:"type"`        // "memory" or "valkey"
	ValkeyAddr string `mapstructure:"valkey_addr"` // e.g. "localhost:6379"
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format     string `mapstructure:"format"` // "json" or "text"
	Level      string `mapstructure:"level"`  // "debug", "info", "warn", "error"
	File       string `mapstructure:"file"`   // optional rotating log file
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// RateLimitConfig holds per-route-group request budgets.
type RateLimitConfig struct {
	Backend  string    `mapstructure:"backend"` // "memory" or "valkey"
	API      LimitRule `mapstructure:"api"`
	Auth     LimitRule `mapstructure:"auth"`
	Generate LimitRule `mapstructure:"generate"`
}

// LimitRule allows Limit requests per WindowSeconds for each client.
type LimitRule struct {
	Limit         int `mapstructure:"limit"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

// Window returns the rule's window as a duration.
func (r LimitRule) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// SMSConfig selects how one-time codes are delivered.
type SMSConfig struct {
	Provider         string `mapstructure:"provider"` // "log" or "twilio"
	TwilioAccountSID string `mapstructure:"twilio_account_sid"`
	TwilioAuthToken  string `mapstructure:"twilio_auth_token"`
	TwilioFromNumber string `mapstructure:"twilio_from"`
	TwilioAPIBase    string `mapstructure:"twilio_api_base"`
}

// BackfillConfig tunes the max_friend_required backfill.
type BackfillConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Read from config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/bakchoddost/")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override
	v.SetEnvPrefix("BAKCHODDOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Comma separated env values arrive as a single element.
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)
	cfg.Server.TrustedProxies = splitList(cfg.Server.TrustedProxies)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./bakchoddost.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.log_level", "")
	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.token_ttl_hours", 24*7)
	v.SetDefault("auth.cookie_name", "token")
	v.SetDefault("auth.return_otp", false)
	v.SetDefault("auth.otp_ttl_seconds", 60)
	v.SetDefault("queue.type", "memory")
	v.SetDefault("queue.valkey_addr", "localhost:6379")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.api.limit", 3000)
	v.SetDefault("rate_limit.api.window_seconds", 900)
	v.SetDefault("rate_limit.auth.limit", 3000)
	v.SetDefault("rate_limit.auth.window_seconds", 900)
	v.SetDefault("rate_limit.generate.limit", 3000)
	v.SetDefault("rate_limit.generate.window_seconds", 900)
	v.SetDefault("sms.provider", "log")
	v.SetDefault("sms.twilio_account_sid", "")
	v.SetDefault("sms.twilio_auth_token", "")
	v.SetDefault("sms.twilio_from", "")
	v.SetDefault("sms.twilio_api_base", "https://api.twilio.com")
	v.SetDefault("backfill.batch_size", 1000)
}

// Validate rejects configurations that must not reach production.
func (c *Config) Validate() error {
	var missing []string
	if c.Server.IsProduction() {
		if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == DefaultJWTSecret {
			missing = append(missing, "auth.jwt_secret")
		}
		if c.Database.DSN == "" {
			missing = append(missing, "database.dsn")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.Backfill.BatchSize <= 0 {
		return fmt.Errorf("backfill.batch_size must be positive, got %d", c.Backfill.BatchSize)
	}
	return nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
