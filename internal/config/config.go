// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the broker.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"-"` // SERVER_TIMEOUT_SECONDS

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBSQLitePath      string        `mapstructure:"DB_SQLITE_PATH"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"` // DB_CONN_MAX_LIFETIME_MINUTES

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	// LogSensitiveValues logs raw provider tokens and profile bodies at debug level.
	LogSensitiveValues bool `mapstructure:"LOG_SENSITIVE_VALUES"`

	// Broker tokens
	JWTSecretKey                string        `mapstructure:"JWT_SECRET_KEY"`
	JWTIssuer                   string        `mapstructure:"JWT_ISSUER"`
	JWTAccessTokenExpiryMinutes time.Duration `mapstructure:"-"` // JWT_ACCESS_TOKEN_EXPIRY_MINUTES
	JWTRefreshTokenExpiryDays   time.Duration `mapstructure:"-"` // JWT_REFRESH_TOKEN_EXPIRY_DAYS

	// Mail.ru provider. Endpoints are fixed in internal/mailru and not configurable.
	MailRuAlias           string        `mapstructure:"MAILRU_ALIAS"`
	MailRuHostedDomain    string        `mapstructure:"MAILRU_HOSTED_DOMAIN"`
	MailRuClientID        string        `mapstructure:"MAILRU_CLIENT_ID"`
	MailRuClientSecret    string        `mapstructure:"MAILRU_CLIENT_SECRET"`
	MailRuRedirectURI     string        `mapstructure:"MAILRU_REDIRECT_URI"`
	MailRuHTTPTimeout     time.Duration `mapstructure:"-"` // MAILRU_HTTP_TIMEOUT_SECONDS
	OAuthStateTTL         time.Duration `mapstructure:"-"` // OAUTH_STATE_TTL_MINUTES
	IdentityRetention     time.Duration `mapstructure:"-"` // IDENTITY_RETENTION_DAYS
	IdentityPruneSchedule string        `mapstructure:"IDENTITY_PRUNE_SCHEDULE"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "mailru_broker")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_SQLITE_PATH", "mailru_broker.db")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_SENSITIVE_VALUES", false)

	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_ISSUER", "mailru_broker")
	v.SetDefault("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", 15)
	v.SetDefault("JWT_REFRESH_TOKEN_EXPIRY_DAYS", 7)

	v.SetDefault("MAILRU_ALIAS", "mailru")
	v.SetDefault("MAILRU_HOSTED_DOMAIN", "")
	v.SetDefault("MAILRU_CLIENT_ID", "")
	v.SetDefault("MAILRU_CLIENT_SECRET", "")
	v.SetDefault("MAILRU_REDIRECT_URI", "http://localhost:8080/api/v1/auth/mailru/callback")
	v.SetDefault("MAILRU_HTTP_TIMEOUT_SECONDS", 10)
	v.SetDefault("OAUTH_STATE_TTL_MINUTES", 10)
	v.SetDefault("IDENTITY_RETENTION_DAYS", 0)
	v.SetDefault("IDENTITY_PRUNE_SCHEDULE", "@daily")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Duration fields are whole-unit counts in the environment; Unmarshal skips them.
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.JWTAccessTokenExpiryMinutes = time.Duration(v.GetInt("JWT_ACCESS_TOKEN_EXPIRY_MINUTES")) * time.Minute
	cfg.JWTRefreshTokenExpiryDays = Days(v.GetInt("JWT_REFRESH_TOKEN_EXPIRY_DAYS"))
	cfg.MailRuHTTPTimeout = time.Duration(v.GetInt("MAILRU_HTTP_TIMEOUT_SECONDS")) * time.Second
	cfg.OAuthStateTTL = time.Duration(v.GetInt("OAUTH_STATE_TTL_MINUTES")) * time.Minute
	cfg.IdentityRetention = Days(v.GetInt("IDENTITY_RETENTION_DAYS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Days converts a day count from the environment into a duration.
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// Validate checks settings the broker cannot run without.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (expected postgres or sqlite)", c.DBDriver)
	}
	if c.GinMode != "release" {
		return nil
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("FATAL: JWT_SECRET_KEY is not set. This is required in release mode")
	}
	if strings.TrimSpace(c.MailRuClientID) == "" || strings.TrimSpace(c.MailRuClientSecret) == "" {
		return fmt.Errorf("FATAL: MAILRU_CLIENT_ID and MAILRU_CLIENT_SECRET are required in release mode")
	}
	return nil
}

// PostgresDSN builds the GORM postgres DSN from the individual DB_* settings.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode, c.DBTimezone)
}
