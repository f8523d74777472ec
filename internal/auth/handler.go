// File: internal/auth/handler.go
package auth

import (
	"errors"
	"net/http"

	"mailru_broker/internal/common"
	"mailru_broker/internal/middleware"
	"mailru_broker/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	userService  user.Service
	oauthService OAuthService
	logger       *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(userService user.Service, oauthService OAuthService, logger *zap.Logger) *Handler {
	return &Handler{
		userService:  userService,
		oauthService: oauthService,
		logger:       logger.Named("AuthHandler"),
	}
}

// RegisterRoutes sets up the authentication and provider routes. authMW
// guards the endpoints that need a broker access token.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/mailru/login", h.mailRuLogin)
		authGroup.GET("/mailru/callback", h.mailRuCallback)
		authGroup.POST("/token-exchange", h.tokenExchange)
		authGroup.POST("/refresh-token", h.refreshToken)
		authGroup.POST("/logout", h.logout)
		authGroup.GET("/me", authMW, h.me)
	}
	router.GET("/providers/:alias", h.providerMetadata)
}

// bind decodes the request body and writes the error response on failure.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err), zap.String("path", c.FullPath()))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return false
	}
	return true
}

func (h *Handler) mailRuLogin(c *gin.Context) {
	authURL, err := h.oauthService.MailRuLoginURL()
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (h *Handler) mailRuCallback(c *gin.Context) {
	if errorParam := c.Query("error"); errorParam != "" {
		errorDesc := c.Query("error_description")
		h.logger.Warn("Mail.ru OAuth callback error", zap.String("error", errorParam), zap.String("description", errorDesc))
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Mail.ru login failed: "+errorParam))
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Missing authorization code or state from Mail.ru."))
		return
	}

	appUser, tokenResponse, err := h.oauthService.HandleMailRuCallback(c.Request.Context(), code, state)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.RespondOK(c, "Mail.ru login processed successfully.", gin.H{
		"user":  user.ToUserResponse(appUser),
		"token": tokenResponse,
	})
}

func (h *Handler) tokenExchange(c *gin.Context) {
	var req TokenExchangeRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.oauthService.ExchangeToken(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bind(c, &req) {
		return
	}

	tokenResponse, err := h.oauthService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Token refreshed successfully.", tokenResponse)
}

func (h *Handler) logout(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.oauthService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	u, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", user.ToUserResponse(u))
}

func (h *Handler) providerMetadata(c *gin.Context) {
	meta := h.oauthService.ProviderMetadata()
	if c.Param("alias") != meta.Alias {
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Unknown identity provider."))
		return
	}
	common.RespondOK(c, "", meta)
}
