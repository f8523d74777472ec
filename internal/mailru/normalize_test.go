package mailru

import (
	"errors"
	"testing"

	"mailru_broker/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Success(t *testing.T) {
	cfg := NewProviderConfig("mailru-corp", "corp.io")
	profile := shared.RawProfile{"email": "user@corp.io", "first_name": "Ann", "last_name": "Lee"}

	identity, err := Normalize(profile, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, "user@corp.io", identity.ID)
	assert.Equal(t, "user@corp.io", identity.Email)
	assert.Equal(t, "user@corp.io", identity.Username)
	assert.Equal(t, "Ann", identity.FirstName)
	assert.Equal(t, "Lee", identity.LastName)
	assert.Equal(t, "mailru-corp", identity.IdpConfig.Alias())

	stored, ok := identity.UserProfile("mailru-corp")
	require.True(t, ok)
	assert.Equal(t, profile, stored)
}

func TestNormalize_OptionalNames(t *testing.T) {
	cfg := NewProviderConfig("mailru", "")
	identity, err := Normalize(shared.RawProfile{"email": "a@b.ru", "first_name": nil}, cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, identity.FirstName)
	assert.Empty(t, identity.LastName)
}

func TestNormalize_WildcardAndUnset(t *testing.T) {
	for _, hd := range []string{"", "*", "other.io,*"} {
		cfg := NewProviderConfig("mailru", hd)
		identity, err := Normalize(shared.RawProfile{"email": "x@any.example"}, cfg, nil)
		require.NoError(t, err, "hosted domain %q", hd)
		assert.Equal(t, identity.Email, identity.Username)
	}
}

func TestNormalize_CaseInsensitiveDomain(t *testing.T) {
	cfg := NewProviderConfig("mailru", "example.com")
	identity, err := Normalize(shared.RawProfile{"email": "joe@Example.com"}, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "joe@Example.com", identity.Email)
}

func TestNormalize_CommaSeparatedList(t *testing.T) {
	cfg := NewProviderConfig("mailru", "a.com,b.com")

	_, err := Normalize(shared.RawProfile{"email": "u@a.com"}, cfg, nil)
	assert.NoError(t, err)
	_, err = Normalize(shared.RawProfile{"email": "u@b.com"}, cfg, nil)
	assert.NoError(t, err)

	_, err = Normalize(shared.RawProfile{"email": "u@c.com"}, cfg, nil)
	var domainErr *DomainNotAllowedError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "c.com", domainErr.Domain)
}

func TestNormalize_DomainNotAllowed(t *testing.T) {
	cfg := NewProviderConfig("mailru", "other.io")
	profile := shared.RawProfile{"email": "user@corp.io", "first_name": "Ann", "last_name": "Lee"}

	identity, err := Normalize(profile, cfg, nil)
	assert.Nil(t, identity)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDomainNotAllowed))

	var domainErr *DomainNotAllowedError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "corp.io", domainErr.Domain)
	assert.Equal(t, ProviderName, domainErr.Provider)
	assert.Contains(t, err.Error(), "corp.io")
	assert.Contains(t, err.Error(), "Mail.ru")
}

func TestNormalize_MissingEmail(t *testing.T) {
	tests := []struct {
		name    string
		profile shared.RawProfile
	}{
		{"absent", shared.RawProfile{"first_name": "Ann"}},
		{"empty", shared.RawProfile{"email": ""}},
		{"blank", shared.RawProfile{"email": "   "}},
		{"null", shared.RawProfile{"email": nil}},
	}
	// A restrictive list proves the email check runs before the domain check.
	cfg := NewProviderConfig("mailru", "corp.io")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := Normalize(tt.profile, cfg, nil)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, ErrMissingEmail)
			assert.NotErrorIs(t, err, ErrDomainNotAllowed)
			assert.Contains(t, err.Error(), "Mail.ru")
			assert.NotContains(t, err.Error(), "Yandex")
		})
	}
}

func TestNormalize_InvalidEmail(t *testing.T) {
	cfg := NewProviderConfig("mailru", "")
	for _, email := range []string{"no-at-sign", "trailing@"} {
		identity, err := Normalize(shared.RawProfile{"email": email}, cfg, nil)
		assert.Nil(t, identity)
		assert.ErrorIs(t, err, ErrInvalidEmail, email)
		assert.True(t, IsUserError(err))
	}
}

func TestNormalize_DomainAfterFirstAt(t *testing.T) {
	cfg := NewProviderConfig("mailru", "b@c.com")
	_, err := Normalize(shared.RawProfile{"email": "a@b@c.com"}, cfg, nil)
	assert.NoError(t, err)
}

func TestNormalize_Idempotent(t *testing.T) {
	cfg := NewProviderConfig("mailru", "corp.io")
	profile := shared.RawProfile{"email": "user@corp.io", "first_name": "Ann", "last_name": "Lee"}

	first, err := Normalize(profile, cfg, nil)
	require.NoError(t, err)
	second, err := Normalize(profile, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestNormalize_StoredProfileIsACopy(t *testing.T) {
	cfg := NewProviderConfig("mailru", "")
	profile := shared.RawProfile{"email": "user@corp.io"}

	identity, err := Normalize(profile, cfg, nil)
	require.NoError(t, err)
	profile["email"] = "changed@corp.io"

	stored, _ := identity.UserProfile("mailru")
	assert.Equal(t, "user@corp.io", stored["email"])
}
