package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/quickfetch/quickfetch/internal/errors"
	"github.com/quickfetch/quickfetch/internal/model"
	"github.com/quickfetch/quickfetch/internal/session"
)

func newTestPairing(t *testing.T) (*PairingService, *memFieldRepo) {
	t.Helper()
	fields := newMemFieldRepo()
	svc := NewPairingService(session.NewStore(), fields, "http", 6999)
	svc.CopyToClipboard = func(string) error { return nil }
	return svc, fields
}

func TestGenerateQR(t *testing.T) {
	ctx := context.Background()

	t.Run("returns url and image", func(t *testing.T) {
		svc, _ := newTestPairing(t)

		payload, err := svc.GenerateQR(ctx, "3", "192.168.1.5")
		require.NoError(t, err)
		assert.Equal(t, "http://192.168.1.5:6999/mobile", payload.URL)
		assert.True(t, strings.HasPrefix(payload.QRImage, "data:image/png;base64,"))
	})

	t.Run("requires target and address", func(t *testing.T) {
		svc, _ := newTestPairing(t)

		_, err := svc.GenerateQR(ctx, "", "192.168.1.5")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))

		_, err = svc.GenerateQR(ctx, "3", "")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
	})

	t.Run("switching address keeps the session", func(t *testing.T) {
		svc, _ := newTestPairing(t)

		_, err := svc.GenerateQR(ctx, "3", "192.168.1.5")
		require.NoError(t, err)
		require.NoError(t, svc.Submit(ctx, "hello", "10.0.0.9"))

		// Regenerating for another address is display-only; the received
		// content must survive.
		payload, err := svc.GenerateQR(ctx, "3", "10.0.0.2")
		require.NoError(t, err)
		assert.Equal(t, "http://10.0.0.2:6999/mobile", payload.URL)
		assert.True(t, svc.Poll().Received)
	})
}

func TestSubmitAndPoll(t *testing.T) {
	ctx := context.Background()

	t.Run("first submission wins, second rejected", func(t *testing.T) {
		svc, _ := newTestPairing(t)

		_, err := svc.GenerateQR(ctx, "3", "192.168.1.5")
		require.NoError(t, err)

		require.NoError(t, svc.Submit(ctx, "hello", "10.0.0.9"))

		err = svc.Submit(ctx, "world", "10.0.0.9")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeStaleSession, apperrors.GetCode(err))

		status := svc.Poll()
		assert.True(t, status.Received)
		assert.Equal(t, "hello", status.Content)
	})

	t.Run("empty content rejected without state change", func(t *testing.T) {
		svc, _ := newTestPairing(t)

		_, err := svc.GenerateQR(ctx, "3", "192.168.1.5")
		require.NoError(t, err)

		err = svc.Submit(ctx, "", "10.0.0.9")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
		assert.False(t, svc.Poll().Received)
	})

	t.Run("submission after cancel rejected", func(t *testing.T) {
		svc, _ := newTestPairing(t)

		_, err := svc.GenerateQR(ctx, "3", "192.168.1.5")
		require.NoError(t, err)
		svc.Cancel()

		err = svc.Submit(ctx, "too late", "10.0.0.9")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeStaleSession, apperrors.GetCode(err))
	})

	t.Run("new session rejects submissions for the old one", func(t *testing.T) {
		svc, _ := newTestPairing(t)

		_, err := svc.GenerateQR(ctx, "1", "192.168.1.5")
		require.NoError(t, err)

		// A new target replaces the session entirely.
		_, err = svc.GenerateQR(ctx, "2", "192.168.1.5")
		require.NoError(t, err)
		require.NoError(t, svc.Submit(ctx, "for two", "10.0.0.9"))

		del, err := svc.Deliver(ctx)
		require.Error(t, err) // field "2" does not exist in the repo
		assert.Nil(t, del)
	})
}

func TestCancelIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestPairing(t)

	_, err := svc.GenerateQR(ctx, "3", "192.168.1.5")
	require.NoError(t, err)

	svc.Cancel()
	svc.Cancel()
	assert.False(t, svc.Poll().Received)
}

func TestDeliver(t *testing.T) {
	ctx := context.Background()

	t.Run("writes content into the target field exactly once", func(t *testing.T) {
		svc, fields := newTestPairing(t)
		require.NoError(t, fields.Upsert(ctx, model.Field{ID: "3"}))

		_, err := svc.GenerateQR(ctx, "3", "192.168.1.5")
		require.NoError(t, err)
		require.NoError(t, svc.Submit(ctx, "hello", "10.0.0.9"))

		del, err := svc.Deliver(ctx)
		require.NoError(t, err)
		assert.Equal(t, "3", del.TargetFieldID)
		assert.Equal(t, "hello", del.Content)

		field, err := fields.FindByID(ctx, "3")
		require.NoError(t, err)
		assert.Equal(t, "hello", field.Text)

		_, err = svc.Deliver(ctx)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeStaleSession, apperrors.GetCode(err))
	})

	t.Run("clipboard target routes to the clipboard", func(t *testing.T) {
		svc, _ := newTestPairing(t)

		var copied string
		svc.CopyToClipboard = func(text string) error {
			copied = text
			return nil
		}

		_, err := svc.GenerateQR(ctx, model.ClipboardTarget, "192.168.1.5")
		require.NoError(t, err)
		require.NoError(t, svc.Submit(ctx, "secret", "10.0.0.9"))

		del, err := svc.Deliver(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.ClipboardTarget, del.TargetFieldID)
		assert.Equal(t, "secret", copied)
	})

	t.Run("nothing to deliver before submission", func(t *testing.T) {
		svc, _ := newTestPairing(t)

		_, err := svc.GenerateQR(ctx, "3", "192.168.1.5")
		require.NoError(t, err)

		_, err = svc.Deliver(ctx)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeStaleSession, apperrors.GetCode(err))
	})
}
