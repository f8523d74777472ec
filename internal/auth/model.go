// File: internal/auth/model.go
package auth

// Token exchange identifiers (RFC 8693).
const (
	GrantTypeTokenExchange = "urn:ietf:params:oauth:grant-type:token-exchange"
	TokenTypeAccessToken   = "urn:ietf:params:oauth:token-type:access_token"
	TokenTypeRefreshToken  = "urn:ietf:params:oauth:token-type:refresh_token"
)

// RefreshTokenRequest defines the structure for refresh and logout requests.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token" binding:"required"`
}

// TokenExchangeRequest is an RFC 8693 request carrying a Mail.ru access token.
// Accepted as JSON or as a form body.
type TokenExchangeRequest struct {
	GrantType          string `json:"grant_type" form:"grant_type" binding:"required"`
	SubjectToken       string `json:"subject_token" form:"subject_token" binding:"required"`
	SubjectTokenType   string `json:"subject_token_type" form:"subject_token_type"`
	SubjectIssuer      string `json:"subject_issuer" form:"subject_issuer"`
	RequestedTokenType string `json:"requested_token_type" form:"requested_token_type"`
}

// TokenExchangeResponse is the RFC 8693 success body.
type TokenExchangeResponse struct {
	AccessToken     string `json:"access_token"`
	IssuedTokenType string `json:"issued_token_type"`
	TokenType       string `json:"token_type"`
	ExpiresIn       int64  `json:"expires_in"`
	RefreshToken    string `json:"refresh_token,omitempty"`
}

// ProviderMetadata describes the configured identity provider.
type ProviderMetadata struct {
	Alias                    string   `json:"alias"`
	DisplayName              string   `json:"display_name"`
	AuthorizationURL         string   `json:"authorization_url"`
	TokenURL                 string   `json:"token_url"`
	UserInfoURL              string   `json:"userinfo_url"`
	DefaultScope             string   `json:"default_scope"`
	AllowedDomains           []string `json:"allowed_domains"`
	SupportsExternalExchange bool     `json:"supports_external_exchange"`
}
