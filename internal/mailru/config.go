// File: internal/mailru/config.go
package mailru

import (
	"strings"
)

// Fixed Mail.ru endpoints. The provider is wired to a single external service,
// operators cannot point it anywhere else.
const (
	// AuthURL is where the user agent is sent to obtain an authorization code.
	AuthURL = "https://oauth.mail.ru/login"
	// TokenURL exchanges an authorization code for an access token.
	TokenURL = "https://oauth.mail.ru/token"
	// ProfileURL returns the user profile for an access token.
	ProfileURL = "https://oauth.mail.ru/userinfo"
	// DefaultScope is requested during authorization when nothing else is configured.
	DefaultScope = "userinfo"
)

const (
	// ProviderID is the stable provider type identifier.
	ProviderID = "mailru"
	// ProviderName is the human readable provider label used in error messages.
	ProviderName = "Mail.ru"

	// WildcardDomain allows any email domain.
	WildcardDomain = "*"
)

// ProviderConfig holds the settings of a single Mail.ru provider instance.
// Values are built once by NewProviderConfig and never change afterwards.
type ProviderConfig struct {
	alias            string
	hostedDomain     string
	allowedDomains   []string
	authorizationURL string
	tokenURL         string
	userInfoURL      string
	defaultScope     string
}

// NewProviderConfig builds the configuration for a provider instance.
// alias namespaces stored raw profiles; hostedDomain is the operator supplied,
// comma separated list of allowed email domains and may be empty.
func NewProviderConfig(alias, hostedDomain string) ProviderConfig {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		alias = ProviderID
	}
	hostedDomain = strings.TrimSpace(hostedDomain)

	return ProviderConfig{
		alias:            alias,
		hostedDomain:     hostedDomain,
		allowedDomains:   parseHostedDomain(hostedDomain),
		authorizationURL: AuthURL,
		tokenURL:         TokenURL,
		userInfoURL:      ProfileURL,
		defaultScope:     DefaultScope,
	}
}

// parseHostedDomain splits the operator value on commas. An unset value means
// every domain is allowed.
func parseHostedDomain(hd string) []string {
	if hd == "" {
		return []string{WildcardDomain}
	}
	parts := strings.Split(hd, ",")
	domains := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		domains = append(domains, p)
	}
	if len(domains) == 0 {
		return []string{WildcardDomain}
	}
	return domains
}

func (c ProviderConfig) Alias() string            { return c.alias }
func (c ProviderConfig) HostedDomain() string     { return c.hostedDomain }
func (c ProviderConfig) AuthorizationURL() string { return c.authorizationURL }
func (c ProviderConfig) TokenURL() string         { return c.tokenURL }
func (c ProviderConfig) UserInfoURL() string      { return c.userInfoURL }
func (c ProviderConfig) DefaultScope() string     { return c.defaultScope }

// DisplayName is the label reported to operators in validation errors.
func (c ProviderConfig) DisplayName() string { return ProviderName }

// AllowedDomains returns a copy of the resolved allow-list.
func (c ProviderConfig) AllowedDomains() []string {
	out := make([]string, len(c.allowedDomains))
	copy(out, c.allowedDomains)
	return out
}

// DomainAllowed reports whether domain passes the hosted domain restriction.
// Matching is case-insensitive; a "*" entry allows everything.
func (c ProviderConfig) DomainAllowed(domain string) bool {
	for _, hd := range c.allowedDomains {
		if hd == WildcardDomain || strings.EqualFold(hd, domain) {
			return true
		}
	}
	return false
}
