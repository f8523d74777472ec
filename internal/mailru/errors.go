// File: internal/mailru/errors.go
package mailru

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrFederationIO     = errors.New("federation io failure")
	ErrMissingEmail     = errors.New("profile has no email")
	ErrInvalidEmail     = errors.New("profile email is malformed")
	ErrDomainNotAllowed = errors.New("email domain not allowed")
	ErrEmptyToken       = errors.New("empty access token")
)

// FederationIOError reports a transport or parse failure while reading the
// profile endpoint.
type FederationIOError struct {
	Provider string
	Op       string
	Err      error
}

func (e *FederationIOError) Error() string {
	return fmt.Sprintf("%s: could not obtain user profile from %s: %v", e.Op, e.Provider, e.Err)
}

func (e *FederationIOError) Unwrap() error { return e.Err }

func (e *FederationIOError) Is(target error) bool { return target == ErrFederationIO }

// IdentityBrokerError is what the federated login entry point hands back to
// the broker when the profile could not be fetched.
type IdentityBrokerError struct {
	Provider string
	Err      error
}

func (e *IdentityBrokerError) Error() string {
	return fmt.Sprintf("identity broker: %v", e.Err)
}

func (e *IdentityBrokerError) Unwrap() error { return e.Err }

// MissingEmailError means the profile carries no usable email.
type MissingEmailError struct {
	Provider string
}

func (e *MissingEmailError) Error() string {
	return fmt.Sprintf("email is not present in the %s profile", e.Provider)
}

func (e *MissingEmailError) Is(target error) bool { return target == ErrMissingEmail }

// InvalidEmailError means the email has no domain part.
type InvalidEmailError struct {
	Provider string
	Email    string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("email %q returned by %s has no domain", e.Email, e.Provider)
}

func (e *InvalidEmailError) Is(target error) bool { return target == ErrInvalidEmail }

// DomainNotAllowedError means the email domain is not on the allow-list.
type DomainNotAllowedError struct {
	Provider string
	Domain   string
}

func (e *DomainNotAllowedError) Error() string {
	return fmt.Sprintf("domain %q is not allowed for %s login", e.Domain, e.Provider)
}

func (e *DomainNotAllowedError) Is(target error) bool { return target == ErrDomainNotAllowed }

// IsUserError reports whether err comes from profile validation rather than
// transport. Those errors are final for the login attempt and retrying will
// not help.
func IsUserError(err error) bool {
	return errors.Is(err, ErrMissingEmail) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrDomainNotAllowed)
}

// StatusError is the cause of a FederationIOError when the profile endpoint
// answered with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("profile endpoint returned status %d", e.StatusCode)
}

// TokenRejected reports whether err means the provider refused the token
// itself (a 4xx answer) rather than failing to respond.
func TokenRejected(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500
}
