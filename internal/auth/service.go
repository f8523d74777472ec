// File: internal/auth/service.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mailru_broker/internal/config"
	"mailru_broker/internal/platform/crypto"
	"mailru_broker/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWTService issues and validates the broker's own HS256 tokens.
type JWTService struct {
	cfg    *config.Config
	secret []byte
	logger *zap.Logger
	now    func() time.Time
}

var _ shared.TokenService = (*JWTService)(nil)

// NewJWTService creates a new JWT service. Outside release mode an empty
// JWT_SECRET_KEY is replaced by a per-process random key.
func NewJWTService(cfg *config.Config, logger *zap.Logger) (*JWTService, error) {
	logger = logger.Named("JWTService")
	secret := cfg.JWTSecretKey
	if strings.TrimSpace(secret) == "" {
		generated, err := crypto.GenerateSecureRandomString(32)
		if err != nil {
			return nil, fmt.Errorf("generate ephemeral jwt secret: %w", err)
		}
		logger.Warn("JWT_SECRET_KEY is not set, using an ephemeral key; issued tokens will not survive a restart")
		secret = generated
	}
	return &JWTService{cfg: cfg, secret: []byte(secret), logger: logger, now: time.Now}, nil
}

func (s *JWTService) refreshIssuer() string {
	return s.cfg.JWTIssuer + "_refresh"
}

func (s *JWTService) GenerateAccessToken(userData shared.UserDataForToken) (string, time.Time, error) {
	return s.sign(userData, s.cfg.JWTIssuer, s.cfg.JWTAccessTokenExpiryMinutes)
}

func (s *JWTService) GenerateRefreshToken(userData shared.UserDataForToken) (string, time.Time, error) {
	return s.sign(userData, s.refreshIssuer(), s.cfg.JWTRefreshTokenExpiryDays)
}

func (s *JWTService) sign(userData shared.UserDataForToken, issuer string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expirationTime := now.Add(ttl)
	claims := &shared.Claims{
		UserID:   userData.GetID(),
		Email:    userData.GetEmail(),
		IdpAlias: userData.GetIdpAlias(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userData.GetID().String(),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err), zap.String("issuer", issuer))
		return "", time.Time{}, fmt.Errorf("could not sign token: %w", err)
	}
	return tokenString, expirationTime, nil
}

// ValidateToken validates an access token and returns its claims.
func (s *JWTService) ValidateToken(tokenString string) (*shared.Claims, error) {
	return s.parse(tokenString, s.cfg.JWTIssuer)
}

// ParseRefreshToken validates a refresh token. Access tokens are rejected.
func (s *JWTService) ParseRefreshToken(refreshTokenString string) (*shared.Claims, error) {
	return s.parse(refreshTokenString, s.refreshIssuer())
}

func (s *JWTService) parse(tokenString, issuer string) (*shared.Claims, error) {
	claims := &shared.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debug("Token rejected", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
