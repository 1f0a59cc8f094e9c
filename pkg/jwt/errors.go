package jwt

import "errors"

var (
	ErrMissingSecret    = errors.New("jwt: signing secret is required")
	ErrIdenticalSecrets = errors.New("jwt: access and refresh secrets must differ")
	ErrInvalidPurpose   = errors.New("jwt: unknown token purpose")
	ErrInvalidToken     = errors.New("jwt: invalid token")
	ErrExpiredToken     = errors.New("jwt: token is expired")
)
