package auth

import (
	"github.com/billingkit/authkit/pkg/lockout"
)

// Config is the flow policy, parsed from the environment with
// caarlos0/env. Token secrets and TTLs live on the jwt and singleuse
// services this package is constructed with.
type Config struct {
	// TotpIssuer is the service name shown in authenticator apps.
	TotpIssuer string `env:"AUTH_TOTP_ISSUER" envDefault:"Billing Admin"`

	// RequireEmailVerification blocks login until the address is
	// confirmed. Disable for internal deployments only.
	RequireEmailVerification bool `env:"AUTH_REQUIRE_EMAIL_VERIFICATION" envDefault:"true"`

	// BackupCodeCount is how many recovery codes a confirmed
	// enrollment issues.
	BackupCodeCount int `env:"AUTH_BACKUP_CODE_COUNT" envDefault:"10"`

	// DefaultRole is assigned to registrations that do not specify one.
	DefaultRole string `env:"AUTH_DEFAULT_ROLE" envDefault:"user"`

	// PasswordMinLength feeds the validator policy.
	PasswordMinLength int `env:"AUTH_PASSWORD_MIN_LENGTH" envDefault:"8"`

	Lockout lockout.Config
}
