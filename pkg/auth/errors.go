package auth

import "errors"

var (
	// ErrInvalidCredentials covers unknown email and wrong password
	// alike, so a caller cannot probe which addresses exist.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrAccountLocked is intentionally distinguishable from bad
	// credentials: the user needs to know to wait, not to retype.
	ErrAccountLocked = errors.New("auth: account temporarily locked")

	ErrEmailNotVerified   = errors.New("auth: email address not verified")
	ErrEmailAlreadyExists = errors.New("auth: email address already registered")

	// ErrAccountNotFound is the store-level sentinel. Login flows never
	// surface it directly; management flows keyed by user ID do.
	ErrAccountNotFound = errors.New("auth: account not found")

	ErrInvalidTwoFactorCode    = errors.New("auth: invalid two-factor code")
	ErrTwoFactorNotEnabled     = errors.New("auth: two-factor authentication not enabled")
	ErrTwoFactorAlreadyEnabled = errors.New("auth: two-factor authentication already enabled")
	ErrTwoFactorNotPending     = errors.New("auth: no pending two-factor enrollment")

	// ErrInvalidToken covers unknown, expired, already-used and
	// malformed single-use or refresh tokens alike.
	ErrInvalidToken = errors.New("auth: invalid or expired token")
)
