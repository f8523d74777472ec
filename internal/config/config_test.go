package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "mailru", cfg.MailRuAlias)
	assert.Empty(t, cfg.MailRuHostedDomain)
	assert.Equal(t, 10*time.Second, cfg.MailRuHTTPTimeout)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenExpiryMinutes)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshTokenExpiryDays)
	assert.Equal(t, 10*time.Minute, cfg.OAuthStateTTL)
	assert.Zero(t, cfg.IdentityRetention)
	assert.False(t, cfg.LogSensitiveValues)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MAILRU_ALIAS", "corp-mailru")
	t.Setenv("MAILRU_HOSTED_DOMAIN", "corp.io,mail.ru")
	t.Setenv("MAILRU_HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("IDENTITY_RETENTION_DAYS", "30")
	t.Setenv("LOG_SENSITIVE_VALUES", "true")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "corp-mailru", cfg.MailRuAlias)
	assert.Equal(t, "corp.io,mail.ru", cfg.MailRuHostedDomain)
	assert.Equal(t, 3*time.Second, cfg.MailRuHTTPTimeout)
	assert.Equal(t, 30*24*time.Hour, cfg.IdentityRetention)
	assert.True(t, cfg.LogSensitiveValues)
}

func TestLoad_DurationCountsFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_TIMEOUT_SECONDS", "45")
	t.Setenv("DB_CONN_MAX_LIFETIME_MINUTES", "5")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", "20")
	t.Setenv("JWT_REFRESH_TOKEN_EXPIRY_DAYS", "14")
	t.Setenv("OAUTH_STATE_TTL_MINUTES", "2")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.ServerTimeout)
	assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, 20*time.Minute, cfg.JWTAccessTokenExpiryMinutes)
	assert.Equal(t, 14*24*time.Hour, cfg.JWTRefreshTokenExpiryDays)
	assert.Equal(t, 2*time.Minute, cfg.OAuthStateTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"debug needs nothing", Config{GinMode: "debug", DBDriver: "sqlite"}, false},
		{"bad driver", Config{GinMode: "debug", DBDriver: "mysql"}, true},
		{"release without secret", Config{GinMode: "release", DBDriver: "postgres", MailRuClientID: "id", MailRuClientSecret: "s"}, true},
		{"release without client", Config{GinMode: "release", DBDriver: "postgres", JWTSecretKey: "k"}, true},
		{"release complete", Config{GinMode: "release", DBDriver: "postgres", JWTSecretKey: "k", MailRuClientID: "id", MailRuClientSecret: "s"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
