package qrcode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billingkit/authkit/pkg/qrcode"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("renders png", func(t *testing.T) {
		t.Parallel()

		png, err := qrcode.Generate("otpauth://totp/Test:user?secret=ABC", 128)
		require.NoError(t, err)
		// PNG magic bytes.
		assert.True(t, len(png) > 8)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
	})

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()

		_, err := qrcode.Generate("   ", 128)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})
}

func TestGenerateDataURI(t *testing.T) {
	t.Parallel()

	uri, err := qrcode.GenerateDataURI("otpauth://totp/Test:user?secret=ABC", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
