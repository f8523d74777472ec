// File: internal/shared/core.go
package shared

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenResponse represents the response containing broker JWT tokens.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// UserDataForToken abstracts the user data needed for token generation.
type UserDataForToken interface {
	GetID() uuid.UUID
	GetEmail() string
	GetIdpAlias() string
}

// TokenService defines the interface for broker JWT operations.
type TokenService interface {
	GenerateAccessToken(userData UserDataForToken) (string, time.Time, error)
	GenerateRefreshToken(userData UserDataForToken) (string, time.Time, error)
	ValidateToken(tokenString string) (*Claims, error)
	ParseRefreshToken(refreshTokenString string) (*Claims, error)
}

// Claims represents the JWT claims structure
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	IdpAlias string    `json:"idp"`
	jwt.RegisteredClaims
}
