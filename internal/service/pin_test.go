package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/quickfetch/quickfetch/internal/errors"
	"github.com/quickfetch/quickfetch/internal/repository"
)

func TestPinService(t *testing.T) {
	ctx := context.Background()

	t.Run("exists is false before set", func(t *testing.T) {
		svc := NewPinService(newMemSettingsRepo())

		exists, err := svc.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("set then verify round trip", func(t *testing.T) {
		svc := NewPinService(newMemSettingsRepo())

		require.NoError(t, svc.Set(ctx, "1234"))

		exists, err := svc.Exists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)

		ok, err := svc.Verify(ctx, "1234")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.Verify(ctx, "5678")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("stores a hash, never the PIN", func(t *testing.T) {
		settings := newMemSettingsRepo()
		svc := NewPinService(settings)

		require.NoError(t, svc.Set(ctx, "1234"))

		stored, err := settings.Get(ctx, repository.SettingPinHash)
		require.NoError(t, err)
		assert.NotContains(t, stored, "1234")
		assert.True(t, strings.HasPrefix(stored, "$2"), "bcrypt hash expected")
	})

	t.Run("rejects malformed PINs", func(t *testing.T) {
		svc := NewPinService(newMemSettingsRepo())

		for _, entry := range []string{"abcd", "12", "12345", ""} {
			err := svc.Set(ctx, entry)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))

			_, err = svc.Verify(ctx, entry)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
		}
	})

	t.Run("verify with no stored PIN is false", func(t *testing.T) {
		svc := NewPinService(newMemSettingsRepo())

		ok, err := svc.Verify(ctx, "1234")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
