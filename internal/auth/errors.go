package auth

import "errors"

var (
	// ErrUnauthorized is returned when a request carries no valid identity.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrForbidden is returned when the identity lacks the required role.
	ErrForbidden = errors.New("auth: forbidden")
	// ErrInvalidToken is returned when a token fails validation.
	ErrInvalidToken = errors.New("auth: invalid token")
)
