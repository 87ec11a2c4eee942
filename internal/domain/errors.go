package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Authentication taxonomy. Each failure mode of the credential paths is its
// own sentinel so callers discriminate with errors.Is instead of matching
// message strings.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password on
	// the password login path. The two cases are deliberately merged so a
	// caller cannot probe which emails have accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	ErrCodeNotFound = errors.New("passcode not found")
	ErrCodeExpired  = errors.New("passcode expired")
	ErrCodeMismatch = errors.New("passcode mismatch")

	ErrDeliveryFailed = errors.New("delivery failed")
)
