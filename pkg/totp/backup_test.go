package totp_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billingkit/authkit/pkg/totp"
)

var backupCodeFormat = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func TestGenerateBackupCodes(t *testing.T) {
	t.Parallel()

	t.Run("generates requested number of well-formed codes", func(t *testing.T) {
		t.Parallel()

		codes, err := totp.GenerateBackupCodes(totp.DefaultBackupCodeCount)
		require.NoError(t, err)
		require.Len(t, codes, 10)

		seen := make(map[string]bool, len(codes))
		for _, code := range codes {
			assert.Regexp(t, backupCodeFormat, code)
			assert.False(t, seen[code], "duplicate code %s", code)
			seen[code] = true
		}
	})

	t.Run("rejects non-positive count", func(t *testing.T) {
		t.Parallel()

		_, err := totp.GenerateBackupCodes(0)
		assert.ErrorIs(t, err, totp.ErrInvalidBackupCodeSize)
	})
}

func TestHashBackupCode(t *testing.T) {
	t.Parallel()

	t.Run("hash normalizes case and whitespace", func(t *testing.T) {
		t.Parallel()

		reference := totp.HashBackupCode("AB12CD34")
		assert.Equal(t, reference, totp.HashBackupCode("ab12cd34"))
		assert.Equal(t, reference, totp.HashBackupCode(" AB12CD34 "))
		assert.NotEqual(t, reference, totp.HashBackupCode("AB12CD35"))
	})

	t.Run("hash is hex-encoded sha-256", func(t *testing.T) {
		t.Parallel()

		assert.Regexp(t, `^[0-9a-f]{64}$`, totp.HashBackupCode("AB12CD34"))
	})
}
