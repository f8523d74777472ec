// File: internal/shared/identity.go
package shared

import (
	"context"
	"encoding/json"
	"fmt"
)

// RawProfile is the unprocessed document returned by a provider userinfo endpoint.
type RawProfile map[string]interface{}

// String returns the value stored under key as text. Missing and null values
// yield an empty string, non-string values are rendered as JSON.
func (p RawProfile) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Clone returns a shallow copy of the top level keys.
func (p RawProfile) Clone() RawProfile {
	if p == nil {
		return nil
	}
	out := make(RawProfile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ProviderDescriptor identifies the provider configuration an identity came from.
type ProviderDescriptor interface {
	Alias() string
	DisplayName() string
}

// IdentityProvider is the seam the broker calls into for a federated provider.
type IdentityProvider interface {
	Alias() string
	DefaultScopes() string
	// ExtractIdentityFromProfile validates and normalizes an already fetched profile.
	ExtractIdentityFromProfile(profile RawProfile) (*BrokeredIdentity, error)
	// FederatedIdentity resolves an access token obtained by the broker's own
	// authorization flow.
	FederatedIdentity(ctx context.Context, accessToken string) (*BrokeredIdentity, error)
	// SupportsExternalExchange advertises token exchange validation support.
	SupportsExternalExchange() bool
	// ProfileEndpointForValidation is the endpoint subject tokens are resolved against.
	ProfileEndpointForValidation() string
	// ExchangeExternalIdentity resolves a subject token issued outside the broker.
	ExchangeExternalIdentity(ctx context.Context, subjectToken string) (*BrokeredIdentity, error)
}

// BrokeredIdentity is the canonical identity produced by a provider.
// The broker owns it once returned.
type BrokeredIdentity struct {
	ID        string
	Email     string
	Username  string
	FirstName string
	LastName  string

	IdpConfig ProviderDescriptor
	Idp       IdentityProvider

	profiles map[string]RawProfile
}

// StoreUserProfileForMapper keeps the raw profile under alias for attribute mappers.
func (b *BrokeredIdentity) StoreUserProfileForMapper(profile RawProfile, alias string) {
	if b.profiles == nil {
		b.profiles = make(map[string]RawProfile)
	}
	b.profiles[alias] = profile
}

// UserProfile returns the raw profile stored under alias.
func (b *BrokeredIdentity) UserProfile(alias string) (RawProfile, bool) {
	p, ok := b.profiles[alias]
	return p, ok
}
