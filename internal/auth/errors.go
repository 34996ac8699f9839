package auth

import "errors"

var (
	// ErrMissingFields is returned when a required field is absent.
	ErrMissingFields = errors.New("all fields are required")

	// ErrPasswordTooShort is returned for passwords under six characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for a bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned for unknown or expired session tokens.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrUserNotFound is returned when no user exists for the lookup.
	ErrUserNotFound = errors.New("user not found")
)
