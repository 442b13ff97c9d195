package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/quickfetch/quickfetch/internal/database"
	"github.com/quickfetch/quickfetch/internal/pin"
	"github.com/quickfetch/quickfetch/internal/repository"
	"github.com/quickfetch/quickfetch/internal/service"
	"github.com/quickfetch/quickfetch/internal/session"
)

type testEnv struct {
	server  *httptest.Server
	pairing *service.PairingService
	fields  *service.FieldService
	copied  []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fieldRepo := repository.NewFieldRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)

	env := &testEnv{}

	store := session.NewStore()
	env.pairing = service.NewPairingService(store, fieldRepo, "http", 6999)
	env.pairing.CopyToClipboard = func(text string) error {
		env.copied = append(env.copied, text)
		return nil
	}

	env.fields = service.NewFieldService(fieldRepo, settingsRepo)
	pins := service.NewPinService(settingsRepo)
	machine := pin.NewMachine(pins, func(ctx context.Context, fieldID string, action pin.Action) error {
		return env.fields.ApplyProtection(ctx, fieldID, action == pin.ActionProtect)
	})

	r := chi.NewRouter()
	NewMobileHandler(env.pairing).Register(r)
	r.Mount("/api", NewDesktopHandler(env.pairing, env.fields, pins, machine).Routes())

	env.server = httptest.NewServer(r)
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(e.server.URL+path, "application/json", &buf)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()

	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
