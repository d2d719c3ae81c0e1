package datasync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/lifetrack/internal/clock"
)

func TestPusherInFlightDirty(t *testing.T) {
	clk := clock.NewManual(now)
	started := make(chan any, 4)
	release := make(chan struct{})

	var mu sync.Mutex
	var sent []any
	p := NewPusher("activity-store", func(_ context.Context, _ string, payload any) error {
		started <- payload
		<-release
		mu.Lock()
		sent = append(sent, payload)
		mu.Unlock()
		return nil
	}, clk, time.Second, nil)

	p.Notify(1)
	require.Equal(t, scheduled, p.state(), "phase %s", p.state())

	fired := make(chan struct{})
	go func() {
		clk.Advance(time.Second)
		close(fired)
	}()
	require.Equal(t, 1, <-started)
	require.Equal(t, inFlight, p.state(), "phase %s", p.state())

	p.Notify(2)
	p.Notify(3)
	require.Equal(t, inFlightDirty, p.state(), "phase %s", p.state())

	close(release)
	<-fired
	require.Equal(t, scheduled, p.state(), "phase %s", p.state())
	require.Equal(t, 1, clk.Pending())

	clk.Advance(time.Second)
	require.Equal(t, 3, <-started)
	require.Equal(t, idle, p.state(), "phase %s", p.state())
	require.Zero(t, clk.Pending())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []any{1, 3}, sent)
}

func TestPusherStopDropsScheduledPush(t *testing.T) {
	clk := clock.NewManual(now)
	calls := 0
	p := NewPusher("gamification-store", func(context.Context, string, any) error {
		calls++
		return nil
	}, clk, time.Second, nil)

	p.Notify("x")
	p.Stop()
	require.Equal(t, idle, p.state(), "phase %s", p.state())
	clk.Advance(2 * time.Second)
	require.Zero(t, calls)

	p.Notify("y")
	require.Equal(t, idle, p.state(), "phase %s", p.state())
	require.NoError(t, p.Flush(context.Background()))
	require.Zero(t, calls)
}
