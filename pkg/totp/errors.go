package totp

import "errors"

var (
	ErrInvalidSecret         = errors.New("totp: secret is not valid base32")
	ErrMissingAccountName    = errors.New("totp: account name is required")
	ErrMissingIssuer         = errors.New("totp: issuer is required")
	ErrSecretGeneration      = errors.New("totp: failed to generate secret")
	ErrBackupCodeGeneration  = errors.New("totp: failed to generate backup codes")
	ErrInvalidBackupCodeSize = errors.New("totp: backup code count must be positive")
)
