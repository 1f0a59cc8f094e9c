package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/billingkit/authkit/pkg/lockout"
)

// Account is the persisted user record as the auth flows see it.
// PasswordHash and TwoFactorSecret never leave the package; BackupCodes
// holds hashes, never plaintext.
type Account struct {
	ID                  uuid.UUID
	Email               string
	PasswordHash        string
	Role                string
	EmailVerified       bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	TwoFactorEnabled    bool
	TwoFactorSecret     string
	BackupCodes         []string
	LastLogin           *time.Time
	CreatedAt           time.Time
}

// LoginResult is the outcome of a successful credential check. Either
// the token pair is populated, or TwoFactorRequired is set and the
// caller must complete the login with VerifyTwoFactor. Never both.
type LoginResult struct {
	UserID            uuid.UUID
	AccessToken       string
	RefreshToken      string
	TwoFactorRequired bool
}

// RegisterInput is the registration form payload.
type RegisterInput struct {
	Email                string
	Password             string
	PasswordConfirmation string
	Role                 string
}

// TwoFactorEnrollment is returned by EnrollTwoFactor. The secret and
// QR code are shown to the user exactly once; enrollment stays pending
// until ConfirmTwoFactor proves the authenticator works.
type TwoFactorEnrollment struct {
	Secret          string
	ProvisioningURI string
	QRCodePNG       []byte
}

// SecurityUpdate is a sparse update of an account's security fields.
// Nil pointer fields are left untouched. BackupCodes replaces the
// stored set when non-nil (pass an empty non-nil slice to clear).
// ClearLockedUntil nulls the lock deadline; it wins over LockedUntil.
type SecurityUpdate struct {
	PasswordHash        *string
	EmailVerified       *bool
	TwoFactorEnabled    *bool
	TwoFactorSecret     *string
	BackupCodes         []string
	FailedLoginAttempts *int
	LockedUntil         *time.Time
	ClearLockedUntil    bool
	LastLogin           *time.Time
}

// UserStore is the account persistence contract. Implementations
// return ErrAccountNotFound for missing rows and ErrEmailAlreadyExists
// on a duplicate-email Create.
//
// RecordLoginFailure and ConsumeBackupCode carry the two mutations
// that race under concurrent logins, so the store must perform them
// atomically: the failure counter is incremented in the store (never
// read-modify-written by the caller), and a backup code hash is
// removed conditionally so two redeemers of the same code cannot both
// win.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Create(ctx context.Context, account *Account) error
	UpdateSecurityFields(ctx context.Context, id uuid.UUID, update SecurityUpdate) error

	// RecordLoginFailure atomically increments the failure counter
	// and, when the post-increment count reaches policy.MaxAttempts,
	// sets the lock deadline to now plus policy.LockDuration. It
	// returns the post-increment state.
	RecordLoginFailure(ctx context.Context, id uuid.UUID, policy lockout.Config) (lockout.State, error)

	// ConsumeBackupCode atomically removes codeHash from the stored
	// set and reports whether this call removed it. Exactly one of any
	// number of concurrent calls for the same hash may report true.
	ConsumeBackupCode(ctx context.Context, id uuid.UUID, codeHash string) (bool, error)
}

// Mailer delivers the flow notifications. *email.Mailer satisfies it.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}
