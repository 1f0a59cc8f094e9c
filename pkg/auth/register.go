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

// Register creates a new unverified account. Validation failures come
// back as validator.ValidationErrors with one entry per problem. When
// the verification policy is on, a confirmation token is issued and
// mailed before Register returns.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	emailAddr := sanitizer.NormalizeEmail(input.Email)

	if err := validator.Apply(
		validator.ValidEmail("email", emailAddr),
		validator.StrongPassword("password", input.Password, s.policy),
		validator.NotCommonPassword("password", input.Password),
		validator.Matches("password_confirmation", input.PasswordConfirmation, input.Password),
	); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = s.cfg.DefaultRole
	}

	account := &Account{
		ID:           uuid.New(),
		Email:        emailAddr,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.String("user_id", account.ID.String()),
	)

	if s.cfg.RequireEmailVerification {
		token, err := s.tokens.Issue(ctx, account.ID, singleuse.PurposeEmailVerification)
		if err != nil {
			return nil, fmt.Errorf("failed to issue verification token: %w", err)
		}
		if err := s.mailer.SendVerificationEmail(ctx, account.Email, token); err != nil {
			return nil, fmt.Errorf("failed to send verification email: %w", err)
		}
	}

	return account, nil
}

// VerifyEmail redeems a verification token and marks the owning
// account as verified. The token is burned before the flag flip, so a
// failed update leaves the account unverified with no live token;
// ResendVerificationEmail is the recovery path.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.tokens.Consume(ctx, token, singleuse.PurposeEmailVerification)
	if err != nil {
		if errors.Is(err, singleuse.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to consume verification token: %w", err)
	}

	verified := true
	if err := s.users.UpdateSecurityFields(ctx, userID, SecurityUpdate{
		EmailVerified: &verified,
	}); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	s.logger.InfoContext(ctx, "email verified",
		slog.String("user_id", userID.String()),
	)
	return nil
}

// ResendVerificationEmail issues a fresh verification token and mails
// it. Unknown and already-verified addresses are silently accepted so
// the endpoint reveals nothing; issuing invalidates any earlier unused
// token.
func (s *Service) ResendVerificationEmail(ctx context.Context, emailAddr string) error {
	account, err := s.users.GetByEmail(ctx, sanitizer.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account.EmailVerified {
		return nil
	}

	token, err := s.tokens.Issue(ctx, account.ID, singleuse.PurposeEmailVerification)
	if err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}
	if err := s.mailer.SendVerificationEmail(ctx, account.Email, token); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.logger.InfoContext(ctx, "verification email resent",
		slog.String("user_id", account.ID.String()),
	)
	return nil
}
