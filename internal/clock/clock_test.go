package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualFiresInDueOrder(t *testing.T) {
	m := NewManual(time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC))
	var fired []string
	m.AfterFunc(2*time.Second, func() { fired = append(fired, "late") })
	m.AfterFunc(time.Second, func() { fired = append(fired, "early") })

	m.Advance(500 * time.Millisecond)
	require.Empty(t, fired)

	m.Advance(2 * time.Second)
	require.Equal(t, []string{"early", "late"}, fired)
	require.Zero(t, m.Pending())
}

func TestManualStopCancels(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	called := false
	timer := m.AfterFunc(time.Second, func() { called = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())
	m.Advance(time.Minute)
	require.False(t, called)
}

func TestManualCallbackMaySchedule(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	count := 0
	m.AfterFunc(time.Second, func() {
		count++
		m.AfterFunc(time.Second, func() { count++ })
	})

	m.Advance(time.Second)
	require.Equal(t, 1, count)
	m.Advance(time.Second)
	require.Equal(t, 2, count)
}
