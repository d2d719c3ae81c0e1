package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"example.com/lifetrack/internal/accounts"
	"example.com/lifetrack/internal/api"
	"example.com/lifetrack/internal/auth"
	"example.com/lifetrack/internal/clock"
	"example.com/lifetrack/internal/logger"
	"example.com/lifetrack/internal/persistence/memory"
	"example.com/lifetrack/internal/tracker"
)

type harness struct {
	t       *testing.T
	dataDir string
	apiURL  string
	service *accounts.Service
	clock   *clock.Manual
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tokens := auth.Config{Secret: "test-secret", Issuer: "lifetrack-test", TTL: time.Hour}
	svc := accounts.NewService(memory.NewRepository(), tokens)
	r := mux.NewRouter()
	api.NewHandler(svc, tokens, "", logger.Nop()).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &harness{
		t:       t,
		dataDir: t.TempDir(),
		apiURL:  srv.URL + "/api",
		service: svc,
		clock:   clock.NewManual(time.Date(2025, time.September, 26, 9, 0, 0, 0, time.UTC)),
	}
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--api-url", h.apiURL, "--data-dir", h.dataDir}, args...)
	err := run(context.Background(), full, strings.NewReader(""), &out, &errOut, h.clock)
	return out.String(), errOut.String(), err
}

func (h *harness) remote(userID int64, key string) map[string]json.RawMessage {
	h.t.Helper()
	raw, err := h.service.Load(context.Background(), userID, key)
	require.NoError(h.t, err)
	if raw == nil {
		return nil
	}
	var fields map[string]json.RawMessage
	require.NoError(h.t, json.Unmarshal(raw, &fields))
	return fields
}

func TestSignedInMutationsReachServer(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("register", "sam", "--password", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "signed in as sam")

	_, _, err = h.run("add-hours", "boxing", "1.5")
	require.NoError(t, err)

	fields := h.remote(1, "activity-store")
	require.NotNil(t, fields)
	var boxing struct {
		TotalHours float64 `json:"totalHours"`
	}
	require.NoError(t, json.Unmarshal(fields["boxing"], &boxing))
	require.Equal(t, 1.5, boxing.TotalHours)
	require.Len(t, fields, 15)

	out, _, err = h.run("status")
	require.NoError(t, err)
	require.Contains(t, out, "signed in as sam")
	require.Contains(t, out, "boxing")
}

func TestLoginPullsRemoteState(t *testing.T) {
	h := newHarness(t)
	_, err := h.service.Register(context.Background(), "kim", "pw")
	require.NoError(t, err)
	require.NoError(t, h.service.Save(context.Background(), 1, "activity-store", json.RawMessage(`{"hasCompletedOnboarding":true}`)))

	_, _, err = h.run("login", "kim", "--password", "pw")
	require.NoError(t, err)

	out, _, err := h.run("status")
	require.NoError(t, err)
	require.Contains(t, out, "onboarding complete: true")
}

func TestLogoutRemovesLocalData(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("register", "sam", "--password", "pw")
	require.NoError(t, err)
	_, _, err = h.run("add-hours", "gym", "2")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(h.dataDir, tracker.ActivityKey+".json"))

	out, _, err := h.run("logout")
	require.NoError(t, err)
	require.Contains(t, out, "signed out")
	require.NoFileExists(t, filepath.Join(h.dataDir, tracker.ActivityKey+".json"))
	require.NoFileExists(t, filepath.Join(h.dataDir, "auth_token.json"))

	out, _, err = h.run("status")
	require.NoError(t, err)
	require.Contains(t, out, "not signed in")
}

func TestOfflineUseAndExportImport(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("add-hours", "violin", "3")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "backup.json")
	out, _, err := h.run("export", file)
	require.NoError(t, err)
	require.Contains(t, out, "exported")

	_, _, err = h.run("add-hours", "violin", "1")
	require.NoError(t, err)

	out, _, err = h.run("import", file)
	require.NoError(t, err)
	require.Contains(t, out, "previous data saved as activity-storage-backup-")

	out, _, err = h.run("show", "violin")
	require.NoError(t, err)
	var record struct {
		TotalHours float64 `json:"totalHours"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	require.Equal(t, 3.0, record.TotalHours)

	_, _, err = h.run("sync")
	require.EqualError(t, err, "not signed in")
}

func TestCustomActivityCommands(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("create", "Rock", "Climbing", "--template", "gym")
	require.NoError(t, err)
	require.Contains(t, out, "created rock-climbing")

	_, _, err = h.run("add-minutes", "rock-climbing", "20")
	require.NoError(t, err)
	_, _, err = h.run("add-hours", "chess", "1")
	require.EqualError(t, err, `unknown activity "chess"`)

	_, _, err = h.run("delete", "rock-climbing")
	require.NoError(t, err)
	_, _, err = h.run("show", "rock-climbing")
	require.Error(t, err)
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("frobnicate")
	require.ErrorContains(t, err, "unknown command")

	_, _, err = h.run("add-hours", "boxing", "-2")
	require.Error(t, err)

	_, _, err = h.run("restore", "oud")
	require.Error(t, err)

	var errOut bytes.Buffer
	err = run(context.Background(), nil, strings.NewReader(""), &bytes.Buffer{}, &errOut, h.clock)
	require.Error(t, err)
	require.Contains(t, errOut.String(), "Commands:")
}
