package domain

import (
	"errors"
	"fmt"
)

// AuthorizationStatus is the location permission granted to the service.
type AuthorizationStatus string

const (
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationAuthorized    AuthorizationStatus = "authorized"
	AuthorizationDenied        AuthorizationStatus = "denied"
)

var ErrInvalidAuthorizationStatus = errors.New("invalid authorization status")

// ParseAuthorizationStatus maps a wire value to a status. "restricted" is
// reported by some platforms and counts as denied.
func ParseAuthorizationStatus(s string) (AuthorizationStatus, error) {
	switch s {
	case string(AuthorizationNotDetermined):
		return AuthorizationNotDetermined, nil
	case string(AuthorizationAuthorized), "authorized_always", "authorized_when_in_use":
		return AuthorizationAuthorized, nil
	case string(AuthorizationDenied), "restricted":
		return AuthorizationDenied, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAuthorizationStatus, s)
	}
}
