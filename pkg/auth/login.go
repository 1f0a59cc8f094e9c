package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/billingkit/authkit/pkg/jwt"
	"github.com/billingkit/authkit/pkg/sanitizer"
	"github.com/billingkit/authkit/pkg/totp"
)

// Login checks credentials and either issues a token pair or, for
// accounts with a confirmed second factor, returns a result demanding
// VerifyTwoFactor.
//
// Unknown email and wrong password both return ErrInvalidCredentials.
// A wrong password on a real account also increments the failure
// counter, which may lock the account. The lock check runs before the
// password check so a locked account reveals nothing about whether the
// supplied password was right.
func (s *Service) Login(ctx context.Context, emailAddr, pass string) (*LoginResult, error) {
	account, err := s.users.GetByEmail(ctx, sanitizer.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.hasher.Verify(pass, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	now := s.now()
	if s.guard.IsLocked(lockState(account), now) {
		return nil, ErrAccountLocked
	}

	if !s.hasher.Verify(pass, account.PasswordHash) {
		// The store increments the counter itself; incrementing the
		// snapshot here would lose concurrent failures.
		state, err := s.users.RecordLoginFailure(ctx, account.ID, s.guard.Config())
		switch {
		case err != nil:
			s.logger.ErrorContext(ctx, "failed to record login failure",
				slog.String("user_id", account.ID.String()),
				slog.String("error", err.Error()),
			)
		case state.LockedUntil != nil && account.LockedUntil == nil:
			s.logger.WarnContext(ctx, "account locked after repeated failures",
				slog.String("user_id", account.ID.String()),
				slog.Int("failed_attempts", state.FailedAttempts),
			)
		}
		return nil, ErrInvalidCredentials
	}

	if s.cfg.RequireEmailVerification && !account.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	if account.TwoFactorEnabled {
		return &LoginResult{UserID: account.ID, TwoFactorRequired: true}, nil
	}

	return s.completeLogin(ctx, account, s.rehashIfStale(ctx, pass, account))
}

// rehashIfStale returns a replacement hash when the stored one was
// produced at a lower cost than the hasher is configured for, taking
// the rare chance to upgrade while the plaintext is in hand.
func (s *Service) rehashIfStale(ctx context.Context, pass string, account *Account) *string {
	if !s.hasher.NeedsRehash(account.PasswordHash) {
		return nil
	}
	hash, err := s.hasher.Hash(pass)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to upgrade password hash",
			slog.String("user_id", account.ID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return &hash
}

// VerifyTwoFactor completes a login that Login flagged as
// TwoFactorRequired. Backup codes are tried before TOTP so a user
// whose device clock has drifted badly can still recover; a matched
// backup code is removed from the stored set permanently.
func (s *Service) VerifyTwoFactor(ctx context.Context, userID uuid.UUID, code string) (*LoginResult, error) {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !account.TwoFactorEnabled {
		return nil, ErrTwoFactorNotEnabled
	}
	if s.guard.IsLocked(lockState(account), s.now()) {
		return nil, ErrAccountLocked
	}

	// The store removes the hash conditionally, so concurrent redeems
	// of the same code race at the row and exactly one wins. A replace
	// of the whole set here could resurrect codes removed in between.
	redeemed, err := s.users.ConsumeBackupCode(ctx, account.ID, totp.HashBackupCode(code))
	if err != nil {
		return nil, fmt.Errorf("failed to consume backup code: %w", err)
	}
	if redeemed {
		s.logger.InfoContext(ctx, "backup code redeemed",
			slog.String("user_id", account.ID.String()),
		)
		return s.completeLogin(ctx, account, nil)
	}

	if totp.ValidateAt(account.TwoFactorSecret, code, s.now()) {
		return s.completeLogin(ctx, account, nil)
	}

	return nil, ErrInvalidTwoFactorCode
}

// Refresh trades a valid refresh token for a fresh access/refresh
// pair. Claims are rebuilt from the current account record so a role
// change takes effect at the next renewal.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.jwt.Verify(refreshToken, jwt.PurposeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	access, refresh, err := s.issueTokenPair(account)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		UserID:       account.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
