// File: internal/mailru/normalize.go
package mailru

import (
	"strings"

	"mailru_broker/internal/shared"
)

// Profile keys read from the Mail.ru userinfo document.
const (
	claimEmail     = "email"
	claimFirstName = "first_name"
	claimLastName  = "last_name"
)

// Normalize outcomes reported to the Recorder.
const (
	NormalizeOK               = "ok"
	NormalizeMissingEmail     = "missing_email"
	NormalizeInvalidEmail     = "invalid_email"
	NormalizeDomainNotAllowed = "domain_not_allowed"
)

// Normalize validates profile against cfg and builds the canonical identity.
// idp is recorded as the owning provider and may be nil.
// Either a complete identity or an error is returned, never both.
func Normalize(profile shared.RawProfile, cfg ProviderConfig, idp shared.IdentityProvider) (*shared.BrokeredIdentity, error) {
	email := profile.String(claimEmail)
	if strings.TrimSpace(email) == "" {
		return nil, &MissingEmailError{Provider: cfg.DisplayName()}
	}

	domain, ok := emailDomain(email)
	if !ok {
		return nil, &InvalidEmailError{Provider: cfg.DisplayName(), Email: email}
	}

	if !cfg.DomainAllowed(domain) {
		return nil, &DomainNotAllowedError{Provider: cfg.DisplayName(), Domain: domain}
	}

	identity := &shared.BrokeredIdentity{
		ID:        email,
		Email:     email,
		Username:  email,
		FirstName: profile.String(claimFirstName),
		LastName:  profile.String(claimLastName),
		IdpConfig: cfg,
		Idp:       idp,
	}
	identity.StoreUserProfileForMapper(profile.Clone(), cfg.Alias())
	return identity, nil
}

// emailDomain returns everything after the first '@'.
func emailDomain(email string) (string, bool) {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return "", false
	}
	domain := email[at+1:]
	if domain == "" {
		return "", false
	}
	return domain, true
}

func normalizeOutcome(err error) string {
	switch err.(type) {
	case nil:
		return NormalizeOK
	case *MissingEmailError:
		return NormalizeMissingEmail
	case *InvalidEmailError:
		return NormalizeInvalidEmail
	case *DomainNotAllowedError:
		return NormalizeDomainNotAllowed
	default:
		return "error"
	}
}
