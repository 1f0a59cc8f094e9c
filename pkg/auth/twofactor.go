package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/billingkit/authkit/pkg/qrcode"
	"github.com/billingkit/authkit/pkg/totp"
)

// EnrollTwoFactor generates a fresh TOTP secret for the account and
// returns the provisioning material. The secret is stored immediately
// but two_factor_enabled stays false until ConfirmTwoFactor proves the
// user's authenticator produces valid codes. Re-enrolling before
// confirmation simply replaces the pending secret.
func (s *Service) EnrollTwoFactor(ctx context.Context, userID uuid.UUID) (*TwoFactorEnrollment, error) {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account.TwoFactorEnabled {
		return nil, ErrTwoFactorAlreadyEnabled
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}

	uri, err := totp.ProvisioningURI(totp.ProvisioningParams{
		Secret:      secret,
		AccountName: account.Email,
		Issuer:      s.cfg.TotpIssuer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build provisioning uri: %w", err)
	}

	png, err := qrcode.Generate(uri, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	if err := s.users.UpdateSecurityFields(ctx, userID, SecurityUpdate{
		TwoFactorSecret: &secret,
	}); err != nil {
		return nil, fmt.Errorf("failed to store pending secret: %w", err)
	}

	s.logger.InfoContext(ctx, "two-factor enrollment started",
		slog.String("user_id", userID.String()),
	)

	return &TwoFactorEnrollment{
		Secret:          secret,
		ProvisioningURI: uri,
		QRCodePNG:       png,
	}, nil
}

// ConfirmTwoFactor validates a live code against the pending secret,
// enables the second factor and issues backup codes. The plaintext
// codes are returned exactly once; only their hashes are stored.
func (s *Service) ConfirmTwoFactor(ctx context.Context, userID uuid.UUID, code string) ([]string, error) {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account.TwoFactorEnabled {
		return nil, ErrTwoFactorAlreadyEnabled
	}
	if account.TwoFactorSecret == "" {
		return nil, ErrTwoFactorNotPending
	}

	if !totp.ValidateAt(account.TwoFactorSecret, code, s.now()) {
		return nil, ErrInvalidTwoFactorCode
	}

	codes, err := totp.GenerateBackupCodes(s.cfg.BackupCodeCount)
	if err != nil {
		return nil, fmt.Errorf("failed to generate backup codes: %w", err)
	}
	hashes := make([]string, len(codes))
	for i, c := range codes {
		hashes[i] = totp.HashBackupCode(c)
	}

	enabled := true
	if err := s.users.UpdateSecurityFields(ctx, userID, SecurityUpdate{
		TwoFactorEnabled: &enabled,
		BackupCodes:      hashes,
	}); err != nil {
		return nil, fmt.Errorf("failed to enable two-factor: %w", err)
	}

	s.logger.InfoContext(ctx, "two-factor enabled",
		slog.String("user_id", userID.String()),
	)
	return codes, nil
}

// DisableTwoFactor turns the second factor off. The password is
// required so a stolen session alone cannot weaken the account.
// The secret and all backup codes are discarded.
func (s *Service) DisableTwoFactor(ctx context.Context, userID uuid.UUID, pass string) error {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if !account.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}
	if !s.hasher.Verify(pass, account.PasswordHash) {
		return ErrInvalidCredentials
	}

	disabled := false
	empty := ""
	if err := s.users.UpdateSecurityFields(ctx, userID, SecurityUpdate{
		TwoFactorEnabled: &disabled,
		TwoFactorSecret:  &empty,
		BackupCodes:      []string{},
	}); err != nil {
		return fmt.Errorf("failed to disable two-factor: %w", err)
	}

	s.logger.InfoContext(ctx, "two-factor disabled",
		slog.String("user_id", userID.String()),
	)
	return nil
}
