package authstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/billingkit/authkit/pkg/auth"
	"github.com/billingkit/authkit/pkg/lockout"
)

// uniqueViolation is the Postgres error code for a unique constraint.
const uniqueViolation = "23505"

const accountColumns = `id, email, password_hash, role, email_verified,
	failed_login_attempts, locked_until, two_factor_enabled,
	two_factor_secret, backup_codes, last_login, created_at`

// UserStore is the Postgres-backed auth.UserStore.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a UserStore over an established pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE email = $1`, email)
	return scanAccount(row)
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *UserStore) Create(ctx context.Context, account *auth.Account) error {
	backupCodes := account.BackupCodes
	if backupCodes == nil {
		backupCodes = []string{}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, role, email_verified,
			failed_login_attempts, locked_until, two_factor_enabled,
			two_factor_secret, backup_codes, last_login, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		account.ID, account.Email, account.PasswordHash, account.Role,
		account.EmailVerified, account.FailedLoginAttempts, account.LockedUntil,
		account.TwoFactorEnabled, account.TwoFactorSecret, backupCodes,
		account.LastLogin, account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// UpdateSecurityFields applies only the populated fields of the update
// as a single UPDATE statement. A no-op update returns nil without
// touching the database.
func (s *UserStore) UpdateSecurityFields(ctx context.Context, id uuid.UUID, update auth.SecurityUpdate) error {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.PasswordHash != nil {
		add("password_hash", *update.PasswordHash)
	}
	if update.EmailVerified != nil {
		add("email_verified", *update.EmailVerified)
	}
	if update.TwoFactorEnabled != nil {
		add("two_factor_enabled", *update.TwoFactorEnabled)
	}
	if update.TwoFactorSecret != nil {
		add("two_factor_secret", *update.TwoFactorSecret)
	}
	if update.BackupCodes != nil {
		add("backup_codes", update.BackupCodes)
	}
	if update.FailedLoginAttempts != nil {
		add("failed_login_attempts", *update.FailedLoginAttempts)
	}
	if update.ClearLockedUntil {
		sets = append(sets, "locked_until = NULL")
	} else if update.LockedUntil != nil {
		add("locked_until", *update.LockedUntil)
	}
	if update.LastLogin != nil {
		add("last_login", *update.LastLogin)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrAccountNotFound
	}
	return nil
}

// RecordLoginFailure increments the counter inside the UPDATE itself,
// so concurrent failures on one account serialize at the row and none
// is lost to a stale in-process read. The lock deadline is set in the
// same statement when the new count crosses the threshold.
func (s *UserStore) RecordLoginFailure(ctx context.Context, id uuid.UUID, policy lockout.Config) (lockout.State, error) {
	var state lockout.State
	err := s.pool.QueryRow(ctx,
		`UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
			locked_until = CASE
				WHEN failed_login_attempts + 1 >= $2 THEN now() + $3
				ELSE locked_until
			END
		WHERE id = $1
		RETURNING failed_login_attempts, locked_until, last_login`,
		id, policy.MaxAttempts, policy.LockDuration,
	).Scan(&state.FailedAttempts, &state.LockedUntil, &state.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lockout.State{}, auth.ErrAccountNotFound
		}
		return lockout.State{}, fmt.Errorf("failed to record login failure: %w", err)
	}
	return state, nil
}

// ConsumeBackupCode removes one hash from the array only if it is
// still present, so of any concurrent redeemers of the same code
// exactly one observes an affected row.
func (s *UserStore) ConsumeBackupCode(ctx context.Context, id uuid.UUID, codeHash string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET backup_codes = array_remove(backup_codes, $2)
		WHERE id = $1 AND $2 = ANY(backup_codes)`,
		id, codeHash,
	)
	if err != nil {
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanAccount(row pgx.Row) (*auth.Account, error) {
	var account auth.Account
	err := row.Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.Role,
		&account.EmailVerified, &account.FailedLoginAttempts, &account.LockedUntil,
		&account.TwoFactorEnabled, &account.TwoFactorSecret, &account.BackupCodes,
		&account.LastLogin, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &account, nil
}
