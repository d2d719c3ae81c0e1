package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/lifetrack/internal/storage"
)

func TestExportImportRoundTripWithBackup(t *testing.T) {
	sub := storage.NewMemoryStore()
	s, err := Open(config(sub))
	require.NoError(t, err)
	require.NoError(t, s.Apply(add("before")))

	exported, err := s.Export()
	require.NoError(t, err)
	require.Contains(t, string(exported), "\n  \"state\"")

	require.NoError(t, s.Apply(add("after")))
	previous, _, _ := sub.Get("notes")

	backup, err := s.Import(exported)
	require.NoError(t, err)
	require.Equal(t, BackupKey("notes", epoch.UnixMilli()), backup)
	require.Equal(t, "notes-backup-1760875200000", backup)

	saved, ok, err := sub.Get(backup)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, previous, saved)
	require.Equal(t, []string{"before"}, s.Snapshot().Items)
}

func TestImportToleratesComments(t *testing.T) {
	s, err := Open(config(storage.NewMemoryStore()))
	require.NoError(t, err)

	backup, err := s.Import([]byte(`{
		// hand edited
		"state": {"title": "notes", "items": ["x",],},
		"version": 2,
	}`))
	require.NoError(t, err)
	require.Empty(t, backup)
	require.Equal(t, "notes", s.Snapshot().Title)
}

func TestImportValidatesShape(t *testing.T) {
	s, err := Open(config(storage.NewMemoryStore()))
	require.NoError(t, err)

	for _, doc := range []string{
		`not json`,
		`{"state":{}}`,
		`{"version":2}`,
		`{"state":[],"version":2}`,
		`{"state":{},"version":"2"}`,
	} {
		_, err := s.Import([]byte(doc))
		require.ErrorIs(t, err, ErrInvalidEnvelope, doc)
	}
	require.Equal(t, "untitled", s.Snapshot().Title)
}
