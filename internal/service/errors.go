package service

import "errors"

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	// The same value covers unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when signing up with a taken username or email.
	ErrUserExists = errors.New("user already exists")
	// ErrNotFound indicates the referenced user or post does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller does not own the resource being mutated.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates a missing, invalid or expired session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
