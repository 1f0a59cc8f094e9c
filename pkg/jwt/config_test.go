package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billingkit/authkit/pkg/jwt"
)

func TestFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("applies configured lifetimes", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
		svc, err := jwt.FromConfig(jwt.Config{
			AccessSecret:  testAccessSecret,
			RefreshSecret: testRefreshSecret,
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		}, jwt.WithClock(func() time.Time { return now }))
		require.NoError(t, err)

		token, err := svc.Issue(jwt.Claims{UserID: "u-1"}, jwt.PurposeAccess)
		require.NoError(t, err)

		claims, err := svc.Verify(token, jwt.PurposeAccess)
		require.NoError(t, err)
		assert.Equal(t, now.Add(time.Minute).Unix(), claims.ExpiresAt)
	})

	t.Run("rejects identical secrets", func(t *testing.T) {
		t.Parallel()

		_, err := jwt.FromConfig(jwt.Config{
			AccessSecret:  testAccessSecret,
			RefreshSecret: testAccessSecret,
		})
		assert.ErrorIs(t, err, jwt.ErrIdenticalSecrets)
	})
}
