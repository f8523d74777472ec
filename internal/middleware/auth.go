// File: internal/middleware/auth.go
package middleware

import (
	"strings"

	"mailru_broker/internal/common"
	"mailru_broker/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// UserIDKey is the context key for storing the authenticated user's ID
	UserIDKey = "userID"
	// UserEmailKey is the context key for storing the authenticated user's email
	UserEmailKey = "userEmail"
	// IdpAliasKey is the context key for the provider the user logged in with
	IdpAliasKey = "idpAlias"
	// UserClaimsKey stores the whole claims object
	UserClaimsKey = "userClaims"
)

// AuthMiddleware creates a Gin middleware that requires a broker access token.
func AuthMiddleware(tokenService shared.TokenService, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		claims, err := tokenService.ValidateToken(parts[1])
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired access token."))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(IdpAliasKey, claims.IdpAlias)
		c.Set(UserClaimsKey, claims)

		logger.Debug("User authenticated successfully",
			zap.String("userID", claims.UserID.String()),
			zap.String("idp", claims.IdpAlias),
		)

		c.Next()
	}
}

// GetUserIDFromContext retrieves the user ID from the Gin context.
// Returns uuid.Nil if not found or not a UUID.
func GetUserIDFromContext(c *gin.Context) uuid.UUID {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil
	}
	userID, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// GetUserClaimsFromContext retrieves the full claims object from the Gin context.
func GetUserClaimsFromContext(c *gin.Context) *shared.Claims {
	val, exists := c.Get(UserClaimsKey)
	if !exists {
		return nil
	}
	claims, _ := val.(*shared.Claims)
	return claims
}
