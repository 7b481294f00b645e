package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Adapters map it to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether the email or the password failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked signals a temporary lockout after repeated failed logins.
	ErrAccountLocked     = errors.New("account locked")
	ErrSessionRevoked    = errors.New("session revoked")
	ErrSessionExpired    = errors.New("session expired")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrRateLimited       = errors.New("rate limited")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrUnsupportedMedia  = errors.New("unsupported media type")
	ErrInvalidTransition = errors.New("invalid status change")
)
