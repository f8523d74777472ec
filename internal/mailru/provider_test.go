package mailru

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"mailru_broker/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubFetcher struct {
	profile shared.RawProfile
	err     error
	tokens  []string
}

func (s *stubFetcher) FetchProfile(_ context.Context, token string) (shared.RawProfile, error) {
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func TestProvider_FederatedIdentity(t *testing.T) {
	fetcher := &stubFetcher{profile: shared.RawProfile{"email": "user@corp.io", "first_name": "Ann", "last_name": "Lee"}}
	rec := &recordingRecorder{}
	p := NewProvider(NewProviderConfig("mailru", "corp.io"), fetcher, rec, zap.NewNop())

	identity, err := p.FederatedIdentity(context.Background(), "access-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"access-1"}, fetcher.tokens)
	assert.Equal(t, "user@corp.io", identity.Email)
	assert.Equal(t, "user@corp.io", identity.Username)
	assert.Equal(t, "Ann", identity.FirstName)
	assert.Equal(t, "Lee", identity.LastName)
	assert.Same(t, p, identity.Idp)
	assert.Equal(t, []string{NormalizeOK}, rec.normalizes)
}

func TestProvider_FederatedIdentity_TransportFailure(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	fetcher := &stubFetcher{err: &FederationIOError{Provider: ProviderName, Op: opFetchProfile, Err: cause}}
	p := NewProvider(NewProviderConfig("mailru", ""), fetcher, nil, nil)

	identity, err := p.FederatedIdentity(context.Background(), "access-1")
	assert.Nil(t, identity)

	var brokerErr *IdentityBrokerError
	require.ErrorAs(t, err, &brokerErr)
	assert.ErrorIs(t, err, ErrFederationIO)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsUserError(err))
}

func TestProvider_FederatedIdentity_ValidationErrorsAreNotWrapped(t *testing.T) {
	fetcher := &stubFetcher{profile: shared.RawProfile{"email": "user@corp.io"}}
	p := NewProvider(NewProviderConfig("mailru", "other.io"), fetcher, nil, nil)

	_, err := p.FederatedIdentity(context.Background(), "access-1")

	var domainErr *DomainNotAllowedError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "corp.io", domainErr.Domain)
	var brokerErr *IdentityBrokerError
	assert.False(t, errors.As(err, &brokerErr))
	assert.True(t, IsUserError(err))
}

func TestProvider_FederatedIdentity_MissingEmail(t *testing.T) {
	fetcher := &stubFetcher{profile: shared.RawProfile{"email": ""}}
	rec := &recordingRecorder{}
	p := NewProvider(NewProviderConfig("mailru", ""), fetcher, rec, nil)

	_, err := p.FederatedIdentity(context.Background(), "access-1")
	assert.ErrorIs(t, err, ErrMissingEmail)
	assert.Equal(t, []string{NormalizeMissingEmail}, rec.normalizes)
}

func TestProvider_ExternalExchange(t *testing.T) {
	client, rt := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "subject-xyz", r.URL.Query().Get("access_token"))
		_, _ = w.Write([]byte(`{"email":"user@corp.io","first_name":"Ann","last_name":"Lee"}`))
	})
	p := NewProvider(NewProviderConfig("mailru", "corp.io"), NewHTTPProfileFetcher(client, nil), nil, nil)

	assert.True(t, p.SupportsExternalExchange())
	assert.Equal(t, ProfileURL, p.ProfileEndpointForValidation())

	profile, err := p.ValidateSubjectToken(context.Background(), "subject-xyz")
	require.NoError(t, err)
	assert.Equal(t, "user@corp.io", profile.String("email"))

	identity, err := p.ExchangeExternalIdentity(context.Background(), "subject-xyz")
	require.NoError(t, err)
	assert.Equal(t, "user@corp.io", identity.Username)
	assert.Equal(t, 2, rt.count())
}

func TestProvider_ExternalExchange_FetchErrorIsRaw(t *testing.T) {
	fetcher := &stubFetcher{err: &FederationIOError{Provider: ProviderName, Op: opFetchProfile, Err: errors.New("boom")}}
	p := NewProvider(NewProviderConfig("mailru", ""), fetcher, nil, nil)

	_, err := p.ExchangeExternalIdentity(context.Background(), "subject")
	var ioErr *FederationIOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestProvider_ExtractIdentityFromProfile(t *testing.T) {
	p := NewProvider(NewProviderConfig("mailru-x", ""), &stubFetcher{}, nil, nil)

	identity, err := p.ExtractIdentityFromProfile(shared.RawProfile{"email": "a@b.ru"})
	require.NoError(t, err)
	stored, ok := identity.UserProfile("mailru-x")
	require.True(t, ok)
	assert.Equal(t, "a@b.ru", stored["email"])
}

func TestProvider_OAuth2Config(t *testing.T) {
	p := NewProvider(NewProviderConfig("mailru", ""), &stubFetcher{}, nil, nil)

	cfg := p.OAuth2Config("client", "secret", "https://broker.example/cb")
	assert.Equal(t, AuthURL, cfg.Endpoint.AuthURL)
	assert.Equal(t, TokenURL, cfg.Endpoint.TokenURL)
	assert.Equal(t, []string{"userinfo"}, cfg.Scopes)
	assert.Equal(t, "userinfo", p.DefaultScopes())

	authURL := cfg.AuthCodeURL("state-1")
	assert.Contains(t, authURL, "https://oauth.mail.ru/login?")
	assert.Contains(t, authURL, "state=state-1")
	assert.Contains(t, authURL, "scope=userinfo")
}

func TestProvider_FederatedIdentity_TransportFailureKeepsTokenOutOfErrorsAndLogs(t *testing.T) {
	const token = "SECRET-TOKEN-123456"
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})}
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	p := NewProvider(NewProviderConfig("mailru", ""), NewHTTPProfileFetcher(client, logger), nil, logger)

	_, err := p.FederatedIdentity(context.Background(), token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFederationIO)
	assert.NotContains(t, err.Error(), token)
	assert.Contains(t, err.Error(), ProfileURL)
	assert.Equal(t, 1, strings.Count(err.Error(), "could not obtain user profile"))

	require.NotEmpty(t, logs.All())
	for _, e := range logs.All() {
		assert.NotContains(t, e.Message, token)
		for k, v := range e.ContextMap() {
			assert.NotContains(t, fmt.Sprint(v), token, "field %s of %q", k, e.Message)
		}
	}
}
