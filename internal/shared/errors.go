package shared

import "errors"

var (
	// ErrDuplicateUser indicates a registration for an email that already exists.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrUserNotFound indicates no user matches the lookup key.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials indicates login failure, including a not-yet-verified account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a malformed, forged, expired or revoked session token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden indicates the caller lacks the role required for an operation.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates malformed request input.
	ErrValidation = errors.New("validation failed")
)
