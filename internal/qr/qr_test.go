package qr

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJoinURL(t *testing.T) {
	tests := []struct {
		name     string
		scheme   string
		address  string
		port     int
		expected string
	}{
		{"http with lan address", "http", "192.168.1.5", 6999, "http://192.168.1.5:6999/mobile"},
		{"https with localhost", "https", "127.0.0.1", 6999, "https://127.0.0.1:6999/mobile"},
		{"custom port", "http", "10.0.0.2", 7100, "http://10.0.0.2:7100/mobile"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, BuildJoinURL(tc.scheme, tc.address, tc.port))
		})
	}
}

func TestRender(t *testing.T) {
	t.Run("returns a PNG data URL", func(t *testing.T) {
		dataURL, err := Render("http://192.168.1.5:6999/mobile")
		require.NoError(t, err)

		require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4], "payload should be a PNG")
	})

	t.Run("different urls produce different images", func(t *testing.T) {
		a, err := Render("http://192.168.1.5:6999/mobile")
		require.NoError(t, err)
		b, err := Render("http://10.0.0.2:6999/mobile")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}
