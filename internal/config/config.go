// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; when empty the server runs on the in-memory account store.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// JWTSecret is the HS256 signing secret. Ignored when a key pair is configured.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAudience  string `mapstructure:"JWT_AUDIENCE"`
	// SessionTTLRaw is the sign-in token lifetime (e.g. "1h").
	SessionTTLRaw string `mapstructure:"SESSION_TTL"`
	// ResetTokenTTLRaw is the password reset token lifetime (e.g. "15m").
	ResetTokenTTLRaw string `mapstructure:"RESET_TOKEN_TTL"`
	// OTPTTLRaw is the validity window of an email OTP (e.g. "5m").
	OTPTTLRaw string `mapstructure:"OTP_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 10.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// RepoTimeoutRaw bounds every account store call made by the lifecycle service.
	RepoTimeoutRaw string `mapstructure:"REPO_TIMEOUT"`
	// NotifyTimeoutRaw bounds every email delivery attempt.
	NotifyTimeoutRaw string `mapstructure:"NOTIFY_TIMEOUT"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	// SMTPFrom defaults to SMTPUsername when empty.
	SMTPFrom string `mapstructure:"SMTP_FROM"`
	// ResetURLBase is the frontend page that receives ?token=<reset token>.
	ResetURLBase string `mapstructure:"RESET_URL_BASE"`

	// DevOTPEnabled exposes GET /dev/otp and records sent OTPs in memory. Must not be true when Env is production.
	DevOTPEnabled bool `mapstructure:"DEV_OTP_ENABLED"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// OTLPEndpoint is the OpenTelemetry collector (host:port or URL). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	TelemetryKafkaTopic   string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// TrustedProxies is a comma-separated list of CIDRs or IPs whose X-Forwarded-For is believed.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL      string `mapstructure:"LOKI_URL"`
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "storefront-auth")
	v.SetDefault("JWT_AUDIENCE", "storefront-api")
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("RESET_TOKEN_TTL", "15m")
	v.SetDefault("OTP_TTL", "5m")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("REPO_TIMEOUT", "5s")
	v.SetDefault("NOTIFY_TIMEOUT", "10s")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("RESET_URL_BASE", "http://localhost:3000/reset-password")
	v.SetDefault("DEV_OTP_ENABLED", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "storefront-auth-events")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "storefront-auth-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.DevOTPEnabled && cfg.IsProduction() {
		return nil, errors.New("config: DEV_OTP_ENABLED must not be true when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 10
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if !cfg.HasKeyPair() && strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("config: JWT_SECRET or JWT_PRIVATE_KEY/JWT_PUBLIC_KEY must be set")
	}
	if (cfg.JWTPrivateKey == "") != (cfg.JWTPublicKey == "") {
		return nil, errors.New("config: JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set together")
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUsername
	}

	return &cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// HasKeyPair reports whether asymmetric JWT signing is configured.
func (c *Config) HasKeyPair() bool {
	return c.JWTPrivateKey != "" && c.JWTPublicKey != ""
}

// SMTPEnabled reports whether an outbound mail server is configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// SessionTTL parses SessionTTLRaw. Returns 1h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.SessionTTLRaw, time.Hour)
}

// ResetTokenTTL parses ResetTokenTTLRaw. Returns 15m if unset or invalid.
func (c *Config) ResetTokenTTL() time.Duration {
	return parseDuration(c.ResetTokenTTLRaw, 15*time.Minute)
}

// OTPTTL parses OTPTTLRaw. Returns 5m if unset or invalid.
func (c *Config) OTPTTL() time.Duration {
	return parseDuration(c.OTPTTLRaw, 5*time.Minute)
}

// RepoTimeout parses RepoTimeoutRaw. Returns 5s if unset or invalid.
func (c *Config) RepoTimeout() time.Duration {
	return parseDuration(c.RepoTimeoutRaw, 5*time.Second)
}

// NotifyTimeout parses NotifyTimeoutRaw. Returns 10s if unset or invalid.
func (c *Config) NotifyTimeout() time.Duration {
	return parseDuration(c.NotifyTimeoutRaw, 10*time.Second)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// TrustedProxiesList returns the configured proxy CIDRs or addresses.
func (c *Config) TrustedProxiesList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.TrustedProxies)
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if Kafka telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.TelemetryKafkaBrokers)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
