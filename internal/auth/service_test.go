package auth

import (
	"testing"
	"time"

	"mailru_broker/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tokenUser struct {
	id    uuid.UUID
	email string
	alias string
}

func (u tokenUser) GetID() uuid.UUID    { return u.id }
func (u tokenUser) GetEmail() string    { return u.email }
func (u tokenUser) GetIdpAlias() string { return u.alias }

func testJWTConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:                "test-secret-key",
		JWTIssuer:                   "mailru_broker",
		JWTAccessTokenExpiryMinutes: 15 * time.Minute,
		JWTRefreshTokenExpiryDays:   24 * time.Hour,
	}
}

func newTestJWTService(t *testing.T, cfg *config.Config) *JWTService {
	t.Helper()
	svc, err := NewJWTService(cfg, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService(t, testJWTConfig())
	u := tokenUser{id: uuid.New(), email: "user@corp.io", alias: "mailru"}

	token, expiresAt, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.id, claims.UserID)
	assert.Equal(t, "user@corp.io", claims.Email)
	assert.Equal(t, "mailru", claims.IdpAlias)
	assert.Equal(t, u.id.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_TokenKindsAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService(t, testJWTConfig())
	u := tokenUser{id: uuid.New(), email: "user@corp.io", alias: "mailru"}

	access, _, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	refresh, _, err := svc.GenerateRefreshToken(u)
	require.NoError(t, err)

	_, err = svc.ParseRefreshToken(access)
	assert.Error(t, err)
	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err)

	claims, err := svc.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, u.id, claims.UserID)
}

func TestJWTService_RejectsExpiredAndForeignTokens(t *testing.T) {
	cfg := testJWTConfig()
	svc := newTestJWTService(t, cfg)
	u := tokenUser{id: uuid.New(), email: "user@corp.io", alias: "mailru"}

	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	otherCfg := testJWTConfig()
	otherCfg.JWTSecretKey = "another-secret"
	foreign, _, err := newTestJWTService(t, otherCfg).GenerateAccessToken(u)
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestNewJWTService_EphemeralSecret(t *testing.T) {
	cfg := testJWTConfig()
	cfg.JWTSecretKey = ""
	svc := newTestJWTService(t, cfg)
	assert.NotEmpty(t, svc.secret)

	u := tokenUser{id: uuid.New(), email: "user@corp.io", alias: "mailru"}
	token, _, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.NoError(t, err)
}
