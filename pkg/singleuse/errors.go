package singleuse

import "errors"

var (
	// ErrTokenNotFound covers every redemption failure (unknown,
	// expired, already used, or lost race) so callers cannot tell
	// which, and neither can an attacker.
	ErrTokenNotFound = errors.New("singleuse: token not found or no longer valid")

	ErrInvalidPurpose = errors.New("singleuse: unknown token purpose")
	ErrTokenGenerate  = errors.New("singleuse: failed to generate token")
)
