package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/billingkit/authkit/pkg/sanitizer"
	"github.com/billingkit/authkit/pkg/singleuse"
	"github.com/billingkit/authkit/pkg/validator"
)

// RequestPasswordReset issues a reset token and mails the link. An
// unknown email returns nil without sending anything, so the endpoint
// cannot be used to enumerate accounts. Issuing a new token silently
// invalidates any earlier unused one.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	account, err := s.users.GetByEmail(ctx, sanitizer.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.logger.DebugContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	token, err := s.tokens.Issue(ctx, account.ID, singleuse.PurposePasswordReset)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, account.Email, token); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset requested",
		slog.String("user_id", account.ID.String()),
	)
	return nil
}

// ResetPassword redeems a reset token and replaces the password. The
// lockout state clears with the password, since the legitimate owner
// has just proven control of the mailbox.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword, confirmation string) error {
	if err := validator.Apply(
		validator.StrongPassword("password", newPassword, s.policy),
		validator.NotCommonPassword("password", newPassword),
		validator.Matches("password_confirmation", confirmation, newPassword),
	); err != nil {
		return err
	}

	userID, err := s.tokens.Consume(ctx, token, singleuse.PurposePasswordReset)
	if err != nil {
		if errors.Is(err, singleuse.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	if err := s.replacePassword(ctx, userID, newPassword); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset completed",
		slog.String("user_id", userID.String()),
	)
	return nil
}

// ChangePassword replaces the password for a logged-in user. The
// current password is required even though the caller holds a valid
// session, so a hijacked session cannot change the credential.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword, confirmation string) error {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if !s.hasher.Verify(current, account.PasswordHash) {
		return ErrInvalidCredentials
	}

	if err := validator.Apply(
		validator.StrongPassword("password", newPassword, s.policy),
		validator.NotCommonPassword("password", newPassword),
		validator.Matches("password_confirmation", confirmation, newPassword),
	); err != nil {
		return err
	}

	if err := s.replacePassword(ctx, userID, newPassword); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("user_id", userID.String()),
	)
	return nil
}

// replacePassword hashes and stores the new password and resets the
// lockout state in the same sparse update.
func (s *Service) replacePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	zero := 0
	if err := s.users.UpdateSecurityFields(ctx, userID, SecurityUpdate{
		PasswordHash:        &hash,
		FailedLoginAttempts: &zero,
		ClearLockedUntil:    true,
	}); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}
	return nil
}
