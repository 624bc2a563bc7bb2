package app

import "errors"

var (
	// ErrInvalidCredentials is returned when the supplied credentials do not
	// match. The message is safe to show to end users and does not enable
	// account enumeration.
	ErrInvalidCredentials = errors.New("Incorrect email address or password")

	ErrEmailAndPasswordRequired = errors.New("email and password required")
	ErrEmailAlreadyExists       = errors.New("email already registered")

	// ErrNotOwner is returned when a user touches a work they do not own.
	ErrNotOwner = errors.New("work belongs to another user")
)
