// File: internal/mailru/provider.go
package mailru

import (
	"context"
	"strings"

	"mailru_broker/internal/shared"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Provider is the Mail.ru identity provider the broker federates with.
type Provider struct {
	cfg      ProviderConfig
	fetcher  ProfileFetcher
	recorder Recorder
	logger   *zap.Logger
}

var _ shared.IdentityProvider = (*Provider)(nil)

// NewProvider creates a provider for cfg. recorder may be nil.
func NewProvider(cfg ProviderConfig, fetcher ProfileFetcher, recorder Recorder, logger *zap.Logger) *Provider {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:      cfg,
		fetcher:  fetcher,
		recorder: recorder,
		logger:   logger.Named("MailRuProvider").With(zap.String("alias", cfg.Alias())),
	}
}

// Config returns the provider configuration.
func (p *Provider) Config() ProviderConfig { return p.cfg }

// Alias returns the provider instance name.
func (p *Provider) Alias() string { return p.cfg.Alias() }

// DefaultScopes is the scope requested during authorization.
func (p *Provider) DefaultScopes() string { return DefaultScope }

// SupportsExternalExchange is always true: subject tokens can be validated
// against the profile endpoint.
func (p *Provider) SupportsExternalExchange() bool { return true }

// ProfileEndpointForValidation returns the endpoint subject tokens are checked against.
func (p *Provider) ProfileEndpointForValidation() string { return ProfileURL }

// OAuth2Config describes the authorization code flow against the fixed endpoints.
func (p *Provider) OAuth2Config(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       strings.Fields(p.DefaultScopes()),
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.cfg.AuthorizationURL(),
			TokenURL:  p.cfg.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// ExtractIdentityFromProfile normalizes an already fetched profile.
func (p *Provider) ExtractIdentityFromProfile(profile shared.RawProfile) (*shared.BrokeredIdentity, error) {
	identity, err := Normalize(profile, p.cfg, p)
	p.recorder.ObserveNormalize(normalizeOutcome(err))
	if err != nil {
		p.logger.Warn("Rejected Mail.ru profile", zap.Error(err))
		return nil, err
	}
	return identity, nil
}

// ValidateSubjectToken resolves an externally issued token against the
// profile endpoint. Signature and expiry checks are the broker's job.
func (p *Provider) ValidateSubjectToken(ctx context.Context, subjectToken string) (shared.RawProfile, error) {
	return p.fetcher.FetchProfile(ctx, subjectToken)
}

// ExchangeExternalIdentity validates a subject token and normalizes the
// resulting profile exactly like an interactive login.
func (p *Provider) ExchangeExternalIdentity(ctx context.Context, subjectToken string) (*shared.BrokeredIdentity, error) {
	profile, err := p.ValidateSubjectToken(ctx, subjectToken)
	if err != nil {
		return nil, err
	}
	return p.ExtractIdentityFromProfile(profile)
}

// FederatedIdentity turns an access token from the authorization code flow
// into an identity. Fetch failures come back as *IdentityBrokerError, profile
// validation errors are returned as they are.
func (p *Provider) FederatedIdentity(ctx context.Context, accessToken string) (*shared.BrokeredIdentity, error) {
	profile, err := p.fetcher.FetchProfile(ctx, accessToken)
	if err != nil {
		p.logger.Error("Could not obtain user profile", zap.Error(err))
		return nil, &IdentityBrokerError{Provider: p.cfg.DisplayName(), Err: err}
	}
	return p.ExtractIdentityFromProfile(profile)
}
