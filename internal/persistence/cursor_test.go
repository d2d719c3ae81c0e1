package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/lifetrack/internal/accounts"
)

func TestCursorRoundTrip(t *testing.T) {
	c := &accounts.Cursor{CreatedAt: time.Date(2025, 10, 1, 8, 30, 0, 123, time.UTC), ID: 17}
	decoded, err := DecodeCursor(EncodeCursor(c))
	require.NoError(t, err)
	require.Equal(t, c, decoded)

	empty, err := DecodeCursor("")
	require.NoError(t, err)
	require.Nil(t, empty)
	require.Empty(t, EncodeCursor(nil))
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, token := range []string{"!!!", "bm8tcGlwZQ==", "eHx5"} {
		_, err := DecodeCursor(token)
		require.Error(t, err, token)
	}
}

func TestAfter(t *testing.T) {
	at := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	c := &accounts.Cursor{CreatedAt: at, ID: 5}
	require.True(t, After(nil, at, 1))
	require.True(t, After(c, at, 6))
	require.False(t, After(c, at, 5))
	require.True(t, After(c, at.Add(time.Second), 1))
	require.False(t, After(c, at.Add(-time.Second), 9))
}
