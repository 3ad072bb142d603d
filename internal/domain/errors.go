package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
	ErrForbidden  = errors.New("forbidden")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are never distinguished in responses.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated means no session or token resolved to an identity.
	ErrUnauthenticated = errors.New("unauthenticated")

	// Token and OTP failure modes.
	ErrExpired      = errors.New("expired")
	ErrMalformed    = errors.New("malformed token")
	ErrBadSignature = errors.New("bad signature")
	ErrInvalidOTP   = errors.New("invalid otp")

	// ErrStoreUnavailable marks a genuine infrastructure failure in the
	// relational or key-value store, as opposed to a miss.
	ErrStoreUnavailable = errors.New("store unavailable")
)
