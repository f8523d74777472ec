// File: internal/auth/errors.go
package auth

import (
	"errors"

	"mailru_broker/internal/common"
	"mailru_broker/internal/mailru"

	"github.com/gin-gonic/gin"
)

// federationAPIError maps errors from the mailru package onto API errors.
// Anything unrecognised is returned unchanged.
func federationAPIError(err error) error {
	var domainErr *mailru.DomainNotAllowedError
	switch {
	case errors.As(err, &domainErr):
		return common.ErrDomainNotAllowed.WithDetails(gin.H{
			"provider": domainErr.Provider,
			"domain":   domainErr.Domain,
		})
	case errors.Is(err, mailru.ErrMissingEmail):
		return common.ErrMissingEmail.WithDetails(err.Error())
	case errors.Is(err, mailru.ErrInvalidEmail):
		return common.ErrInvalidEmail.WithDetails(err.Error())
	case errors.Is(err, mailru.ErrFederationIO):
		return common.ErrFederationUnavailable.WithDetails("Could not obtain user profile from Mail.ru.")
	default:
		return err
	}
}

// exchangeAPIError is federationAPIError for the token exchange endpoint,
// where a token the provider refuses is the caller's fault.
func exchangeAPIError(err error) error {
	if errors.Is(err, mailru.ErrEmptyToken) || mailru.TokenRejected(err) {
		return common.ErrInvalidGrant.WithDetails(err.Error())
	}
	return federationAPIError(err)
}
