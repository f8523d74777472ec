// File: internal/auth/oauth_service.go
package auth

import (
	"context"
	"errors"
	"net/http"

	"mailru_broker/internal/common"
	"mailru_broker/internal/config"
	"mailru_broker/internal/mailru"
	"mailru_broker/internal/shared"
	"mailru_broker/internal/user"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// OAuthService defines the federated login operations.
type OAuthService interface {
	MailRuLoginURL() (string, error)
	HandleMailRuCallback(ctx context.Context, code, state string) (*user.FederatedUser, *shared.TokenResponse, error)
	ExchangeToken(ctx context.Context, req TokenExchangeRequest) (*TokenExchangeResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*shared.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ProviderMetadata() ProviderMetadata
}

type oauthService struct {
	cfg          *config.Config
	provider     *mailru.Provider
	userService  user.Service
	tokenService shared.TokenService
	blocklist    TokenBlocklistService
	states       *StateStore
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewOAuthService creates a new OAuth service. httpClient is used for the
// authorization code exchange.
func NewOAuthService(
	cfg *config.Config,
	provider *mailru.Provider,
	userService user.Service,
	tokenService shared.TokenService,
	blocklist TokenBlocklistService,
	states *StateStore,
	httpClient *http.Client,
	logger *zap.Logger,
) OAuthService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &oauthService{
		cfg:          cfg,
		provider:     provider,
		userService:  userService,
		tokenService: tokenService,
		blocklist:    blocklist,
		states:       states,
		httpClient:   httpClient,
		logger:       logger.Named("OAuthService"),
	}
}

func (s *oauthService) oauth2Config() *oauth2.Config {
	return s.provider.OAuth2Config(s.cfg.MailRuClientID, s.cfg.MailRuClientSecret, s.cfg.MailRuRedirectURI)
}

// MailRuLoginURL builds the authorization URL with a fresh state value.
func (s *oauthService) MailRuLoginURL() (string, error) {
	state, err := s.states.Issue()
	if err != nil {
		s.logger.Error("Failed to generate OAuth state for Mail.ru", zap.Error(err))
		return "", common.ErrInternalServer.WithDetails("Could not initiate Mail.ru login.")
	}
	return s.oauth2Config().AuthCodeURL(state), nil
}

// HandleMailRuCallback exchanges the authorization code, resolves the
// federated identity and provisions the local user.
func (s *oauthService) HandleMailRuCallback(ctx context.Context, code, state string) (*user.FederatedUser, *shared.TokenResponse, error) {
	if !s.states.Consume(state) {
		s.logger.Warn("Mail.ru OAuth state mismatch")
		return nil, nil, common.ErrBadRequest.WithDetails("OAuth state mismatch or expired. Please start the login again.")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauth2Config().Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			s.logger.Warn("Mail.ru rejected the authorization code", zap.Int("status", retrieveErr.Response.StatusCode), zap.String("errorCode", retrieveErr.ErrorCode))
			return nil, nil, common.ErrUnauthorized.WithDetails("Mail.ru rejected the authorization code.")
		}
		s.logger.Error("Failed to exchange Mail.ru auth code for token", zap.Error(err))
		return nil, nil, common.ErrFederationUnavailable.WithDetails("Could not exchange Mail.ru auth code.")
	}

	identity, err := s.provider.FederatedIdentity(ctx, token.AccessToken)
	if err != nil {
		return nil, nil, federationAPIError(err)
	}

	usr, _, err := s.provision(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := s.issueTokens(usr)
	if err != nil {
		return nil, nil, err
	}
	return usr, tokens, nil
}

// ExchangeToken trades an externally obtained Mail.ru access token for
// broker tokens.
func (s *oauthService) ExchangeToken(ctx context.Context, req TokenExchangeRequest) (*TokenExchangeResponse, error) {
	if req.GrantType != GrantTypeTokenExchange {
		return nil, common.ErrUnsupportedGrantType.WithDetails("grant_type must be " + GrantTypeTokenExchange)
	}
	if !s.provider.SupportsExternalExchange() {
		return nil, common.ErrUnsupportedTokenType.WithDetails("Provider does not accept external tokens.")
	}
	if req.SubjectTokenType != "" && req.SubjectTokenType != TokenTypeAccessToken {
		return nil, common.ErrUnsupportedTokenType.WithDetails("subject_token_type must be " + TokenTypeAccessToken)
	}
	if req.RequestedTokenType != "" && req.RequestedTokenType != TokenTypeAccessToken {
		return nil, common.ErrUnsupportedTokenType.WithDetails("requested_token_type must be " + TokenTypeAccessToken)
	}
	if req.SubjectIssuer != "" && req.SubjectIssuer != s.provider.Alias() {
		return nil, common.ErrInvalidGrant.WithDetails("Unknown subject_issuer.")
	}

	identity, err := s.provider.ExchangeExternalIdentity(ctx, req.SubjectToken)
	if err != nil {
		s.logger.Info("Token exchange rejected", zap.Error(err))
		return nil, exchangeAPIError(err)
	}

	usr, _, err := s.provision(ctx, identity)
	if err != nil {
		return nil, err
	}
	tokens, err := s.issueTokens(usr)
	if err != nil {
		return nil, err
	}
	return &TokenExchangeResponse{
		AccessToken:     tokens.AccessToken,
		IssuedTokenType: TokenTypeAccessToken,
		TokenType:       tokens.TokenType,
		ExpiresIn:       int64(s.cfg.JWTAccessTokenExpiryMinutes.Seconds()),
		RefreshToken:    tokens.RefreshToken,
	}, nil
}

// RefreshToken issues a new access token for a valid, unrevoked refresh token.
func (s *oauthService) RefreshToken(ctx context.Context, refreshToken string) (*shared.TokenResponse, error) {
	claims, err := s.activeRefreshClaims(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	usr, err := s.userService.GetUserByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Warn("User not found for valid refresh token claims", zap.String("userID", claims.UserID.String()), zap.Error(err))
		return nil, common.ErrUnauthorized.WithDetails("User associated with refresh token not found.")
	}

	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(usr)
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails("Could not generate new access token.")
	}
	return &shared.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

// Logout revokes the refresh token until it expires.
func (s *oauthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.activeRefreshClaims(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.blocklist.AddToBlocklist(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.logger.Error("Failed to blocklist refresh token", zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not revoke refresh token.")
	}
	s.logger.Info("Refresh token revoked", zap.String("userID", claims.UserID.String()))
	return nil
}

// ProviderMetadata describes the configured provider.
func (s *oauthService) ProviderMetadata() ProviderMetadata {
	cfg := s.provider.Config()
	return ProviderMetadata{
		Alias:                    cfg.Alias(),
		DisplayName:              cfg.DisplayName(),
		AuthorizationURL:         cfg.AuthorizationURL(),
		TokenURL:                 cfg.TokenURL(),
		UserInfoURL:              cfg.UserInfoURL(),
		DefaultScope:             cfg.DefaultScope(),
		AllowedDomains:           cfg.AllowedDomains(),
		SupportsExternalExchange: s.provider.SupportsExternalExchange(),
	}
}

func (s *oauthService) activeRefreshClaims(ctx context.Context, refreshToken string) (*shared.Claims, error) {
	claims, err := s.tokenService.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, common.ErrUnauthorized.WithDetails("Invalid or expired refresh token.")
	}
	revoked, err := s.blocklist.IsBlocklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Failed to check refresh token blocklist", zap.Error(err))
		return nil, common.ErrInternalServer
	}
	if revoked {
		return nil, common.ErrUnauthorized.WithDetails("Refresh token has been revoked.")
	}
	return claims, nil
}

func (s *oauthService) provision(ctx context.Context, identity *shared.BrokeredIdentity) (*user.FederatedUser, bool, error) {
	usr, created, err := s.userService.FindOrCreateFromIdentity(ctx, identity)
	if err != nil {
		s.logger.Error("Failed to provision federated user", zap.Error(err))
		if _, ok := common.IsAPIError(err); ok {
			return nil, false, err
		}
		return nil, false, common.ErrInternalServer.WithDetails("Failed to process user account after Mail.ru login.")
	}
	return usr, created, nil
}

func (s *oauthService) issueTokens(usr *user.FederatedUser) (*shared.TokenResponse, error) {
	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(usr)
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails("Could not generate access token.")
	}
	refreshToken, _, err := s.tokenService.GenerateRefreshToken(usr)
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails("Could not generate refresh token.")
	}
	return &shared.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}
