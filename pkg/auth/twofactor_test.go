package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billingkit/authkit/pkg/auth"
	"github.com/billingkit/authkit/pkg/totp"
)

func TestService_EnrollTwoFactor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stores a pending secret without enabling", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account := k.account(t)
		require.NoError(t, users.Create(ctx, account))

		enrollment, err := k.svc.EnrollTwoFactor(ctx, account.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, enrollment.Secret)
		assert.Contains(t, enrollment.ProvisioningURI, "otpauth://totp/")
		assert.Contains(t, enrollment.ProvisioningURI, enrollment.Secret)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, enrollment.QRCodePNG[:4])

		stored, err := users.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, enrollment.Secret, stored.TwoFactorSecret)
		assert.False(t, stored.TwoFactorEnabled)

		// Login does not demand a second factor yet.
		result, err := k.svc.Login(ctx, account.Email, testPassword)
		require.NoError(t, err)
		assert.False(t, result.TwoFactorRequired)
	})

	t.Run("rejects when already enabled", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account := k.account(t, func(a *auth.Account) {
			a.TwoFactorEnabled = true
			a.TwoFactorSecret = "JBSWY3DPEHPK3PXP"
		})
		require.NoError(t, users.Create(ctx, account))

		_, err := k.svc.EnrollTwoFactor(ctx, account.ID)
		assert.ErrorIs(t, err, auth.ErrTwoFactorAlreadyEnabled)
	})
}

func TestService_ConfirmTwoFactor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("live code enables and issues backup codes", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account := k.account(t)
		require.NoError(t, users.Create(ctx, account))

		enrollment, err := k.svc.EnrollTwoFactor(ctx, account.ID)
		require.NoError(t, err)

		code, err := totp.GenerateCodeAt(enrollment.Secret, k.now)
		require.NoError(t, err)

		codes, err := k.svc.ConfirmTwoFactor(ctx, account.ID, code)
		require.NoError(t, err)
		require.Len(t, codes, 4)

		stored, err := users.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, stored.TwoFactorEnabled)
		require.Len(t, stored.BackupCodes, 4)
		// Stored values are hashes, never the plaintext codes.
		for _, plaintext := range codes {
			assert.NotContains(t, stored.BackupCodes, plaintext)
		}
	})

	t.Run("wrong code keeps enrollment pending", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account := k.account(t)
		require.NoError(t, users.Create(ctx, account))

		_, err := k.svc.EnrollTwoFactor(ctx, account.ID)
		require.NoError(t, err)

		_, err = k.svc.ConfirmTwoFactor(ctx, account.ID, "000001")
		assert.ErrorIs(t, err, auth.ErrInvalidTwoFactorCode)

		stored, err := users.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.False(t, stored.TwoFactorEnabled)
	})

	t.Run("nothing pending", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account := k.account(t)
		require.NoError(t, users.Create(ctx, account))

		_, err := k.svc.ConfirmTwoFactor(ctx, account.ID, "123456")
		assert.ErrorIs(t, err, auth.ErrTwoFactorNotPending)
	})
}

func TestService_VerifyTwoFactor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// enabledAccount seeds a confirmed 2FA account and returns its
	// secret and plaintext backup codes.
	enabledAccount := func(t *testing.T, k *kit, users *memUserStore) (*auth.Account, string, []string) {
		t.Helper()

		account := k.account(t)
		require.NoError(t, users.Create(ctx, account))

		enrollment, err := k.svc.EnrollTwoFactor(ctx, account.ID)
		require.NoError(t, err)
		code, err := totp.GenerateCodeAt(enrollment.Secret, k.now)
		require.NoError(t, err)
		codes, err := k.svc.ConfirmTwoFactor(ctx, account.ID, code)
		require.NoError(t, err)
		return account, enrollment.Secret, codes
	}

	t.Run("totp code completes the login", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account, secret, _ := enabledAccount(t, k, users)

		result, err := k.svc.Login(ctx, account.Email, testPassword)
		require.NoError(t, err)
		require.True(t, result.TwoFactorRequired)

		code, err := totp.GenerateCodeAt(secret, k.now)
		require.NoError(t, err)

		completed, err := k.svc.VerifyTwoFactor(ctx, account.ID, code)
		require.NoError(t, err)
		assert.NotEmpty(t, completed.AccessToken)
		assert.NotEmpty(t, completed.RefreshToken)
	})

	t.Run("backup code works once and is removed", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account, _, codes := enabledAccount(t, k, users)

		completed, err := k.svc.VerifyTwoFactor(ctx, account.ID, codes[0])
		require.NoError(t, err)
		assert.NotEmpty(t, completed.AccessToken)

		stored, err := users.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Len(t, stored.BackupCodes, 3)

		_, err = k.svc.VerifyTwoFactor(ctx, account.ID, codes[0])
		assert.ErrorIs(t, err, auth.ErrInvalidTwoFactorCode)
	})

	t.Run("simultaneous redeems of one backup code admit exactly one", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account, _, codes := enabledAccount(t, k, users)

		const redeemers = 2
		results := make(chan error, redeemers)
		var wg sync.WaitGroup
		for i := 0; i < redeemers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := k.svc.VerifyTwoFactor(ctx, account.ID, codes[0])
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var succeeded, rejected int
		for err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, auth.ErrInvalidTwoFactorCode)
				rejected++
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, rejected)

		stored, err := users.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Len(t, stored.BackupCodes, 3)
	})

	t.Run("simultaneous redeems of different codes both land", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account, _, codes := enabledAccount(t, k, users)

		var wg sync.WaitGroup
		for _, code := range codes[:2] {
			wg.Add(1)
			go func(code string) {
				defer wg.Done()
				_, err := k.svc.VerifyTwoFactor(ctx, account.ID, code)
				assert.NoError(t, err)
			}(code)
		}
		wg.Wait()

		stored, err := users.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Len(t, stored.BackupCodes, 2)
	})

	t.Run("backup code match is case-insensitive", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account, _, codes := enabledAccount(t, k, users)

		_, err := k.svc.VerifyTwoFactor(ctx, account.ID, "  "+strings.ToLower(codes[1])+" ")
		assert.NoError(t, err)
	})

	t.Run("rejects when not enabled", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account := k.account(t)
		require.NoError(t, users.Create(ctx, account))

		_, err := k.svc.VerifyTwoFactor(ctx, account.ID, "123456")
		assert.ErrorIs(t, err, auth.ErrTwoFactorNotEnabled)
	})
}

func TestService_DisableTwoFactor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	seed := func(t *testing.T, k *kit, users *memUserStore) *auth.Account {
		t.Helper()

		account := k.account(t)
		require.NoError(t, users.Create(ctx, account))
		enrollment, err := k.svc.EnrollTwoFactor(ctx, account.ID)
		require.NoError(t, err)
		code, err := totp.GenerateCodeAt(enrollment.Secret, k.now)
		require.NoError(t, err)
		_, err = k.svc.ConfirmTwoFactor(ctx, account.ID, code)
		require.NoError(t, err)
		return account
	}

	t.Run("requires the password", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account := seed(t, k, users)

		err := k.svc.DisableTwoFactor(ctx, account.ID, "wrong-password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("clears secret and backup codes", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account := seed(t, k, users)

		require.NoError(t, k.svc.DisableTwoFactor(ctx, account.ID, testPassword))

		stored, err := users.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.False(t, stored.TwoFactorEnabled)
		assert.Empty(t, stored.TwoFactorSecret)
		assert.Empty(t, stored.BackupCodes)

		result, err := k.svc.Login(ctx, account.Email, testPassword)
		require.NoError(t, err)
		assert.False(t, result.TwoFactorRequired)
	})

	t.Run("rejects when not enabled", func(t *testing.T) {
		t.Parallel()

		users := newMemUserStore()
		k := newKit(t, users)
		account := k.account(t)
		require.NoError(t, users.Create(ctx, account))

		err := k.svc.DisableTwoFactor(ctx, account.ID, testPassword)
		assert.ErrorIs(t, err, auth.ErrTwoFactorNotEnabled)
	})
}
