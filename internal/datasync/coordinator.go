// Package datasync keeps the local stores and the remote key/value API in step: one pull on
// sign-in, then debounced pushes of each store's projection.
package datasync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"example.com/lifetrack/internal/client"
	"example.com/lifetrack/internal/clock"
	"example.com/lifetrack/internal/domain"
	"example.com/lifetrack/internal/gamification"
	"example.com/lifetrack/internal/logger"
	"example.com/lifetrack/internal/tracker"
)

// Remote keys. They differ from the local substrate keys.
const (
	ActivityRemoteKey     = "activity-store"
	GamificationRemoteKey = "gamification-store"
)

// ErrNoUser is returned by SyncNow before a user has signed in.
var ErrNoUser = errors.New("no signed-in user")

// Remote is the subset of the API client the coordinator needs.
type Remote interface {
	GetData(ctx context.Context, key string) (json.RawMessage, error)
	SaveData(ctx context.Context, key string, data any) error
	Logout() error
}

// Coordinator owns the sync lifecycle for one tracker.
type Coordinator struct {
	tracker *tracker.Tracker
	remote  Remote
	clock   clock.Clock
	delay   time.Duration
	log     *logger.Logger

	mu      sync.Mutex
	user    *client.User
	loaded  bool
	pushers map[string]*Pusher
	unsubs  []func()
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithClock(clk clock.Clock) Option { return func(c *Coordinator) { c.clock = clk } }

func WithDebounce(d time.Duration) Option { return func(c *Coordinator) { c.delay = d } }

func WithLogger(l *logger.Logger) Option { return func(c *Coordinator) { c.log = l } }

// New wires a coordinator to the tracker's stores. Pushes stay suppressed until Login has
// finished its pull.
func New(t *tracker.Tracker, remote Remote, opts ...Option) *Coordinator {
	c := &Coordinator{
		tracker: t,
		remote:  remote,
		clock:   clock.Real(),
		delay:   DefaultDebounce,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "datasync")
	c.unsubs = append(c.unsubs,
		t.Activity().Subscribe(func(s domain.State) { c.changed(ActivityRemoteKey, s.Projection()) }),
		t.Gamification().Subscribe(func(s gamification.State) { c.changed(GamificationRemoteKey, s.Projection()) }),
	)
	return c
}

func (c *Coordinator) changed(key string, payload map[string]any) {
	c.mu.Lock()
	p := c.pushers[key]
	ready := c.loaded
	c.mu.Unlock()
	if !ready || p == nil {
		return
	}
	p.Notify(payload)
}

// Login pulls both remote keys once for user and then enables pushes. Pull failures are
// logged and returned, but pushes are enabled regardless.
func (c *Coordinator) Login(ctx context.Context, user client.User) error {
	c.mu.Lock()
	if c.loaded && c.user != nil && c.user.ID == user.ID {
		c.mu.Unlock()
		return nil
	}
	c.stopPushersLocked()
	c.user = &user
	c.loaded = false
	c.mu.Unlock()

	log := c.log.With("user_id", user.ID)
	var errs []error
	for _, target := range []struct {
		key     string
		overlay func(map[string]json.RawMessage) error
	}{
		{ActivityRemoteKey, c.tracker.Activity().Overlay},
		{GamificationRemoteKey, c.tracker.Gamification().Overlay},
	} {
		if err := c.pull(ctx, target.key, target.overlay); err != nil {
			log.Warn("initial pull failed", "remote_key", target.key, "error", err)
			errs = append(errs, err)
		}
	}

	c.mu.Lock()
	c.pushers = map[string]*Pusher{
		ActivityRemoteKey:     NewPusher(ActivityRemoteKey, c.remote.SaveData, c.clock, c.delay, c.log),
		GamificationRemoteKey: NewPusher(GamificationRemoteKey, c.remote.SaveData, c.clock, c.delay, c.log),
	}
	c.loaded = true
	c.mu.Unlock()
	log.Info("initial pull complete", "errors", len(errs))
	return errors.Join(errs...)
}

func (c *Coordinator) pull(ctx context.Context, key string, overlay func(map[string]json.RawMessage) error) error {
	raw, err := c.remote.GetData(ctx, key)
	recordPull(key, err)
	if err != nil {
		return fmt.Errorf("pull %s: %w", key, err)
	}
	if raw == nil {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Remote holds something other than an object; leave local state alone.
		c.log.Warn("ignoring non-object remote data", "remote_key", key, "error", err)
		return nil
	}
	if len(fields) == 0 {
		return nil
	}
	if err := overlay(fields); err != nil {
		return fmt.Errorf("apply %s: %w", key, err)
	}
	return nil
}

// Ready reports whether the initial pull has completed.
func (c *Coordinator) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// SyncNow pushes both projections immediately and returns any push error.
func (c *Coordinator) SyncNow(ctx context.Context) error {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return ErrNoUser
	}
	pushers := c.pushers
	c.mu.Unlock()
	if pushers == nil {
		pushers = map[string]*Pusher{
			ActivityRemoteKey:     NewPusher(ActivityRemoteKey, c.remote.SaveData, c.clock, c.delay, c.log),
			GamificationRemoteKey: NewPusher(GamificationRemoteKey, c.remote.SaveData, c.clock, c.delay, c.log),
		}
	}

	pushers[ActivityRemoteKey].Notify(c.tracker.State().Projection())
	pushers[GamificationRemoteKey].Notify(c.tracker.Game().Projection())
	return errors.Join(
		pushers[ActivityRemoteKey].Flush(ctx),
		pushers[GamificationRemoteKey].Flush(ctx),
	)
}

// Logout stops pushing, deletes both local stores and clears the bearer token.
func (c *Coordinator) Logout() error {
	c.mu.Lock()
	c.stopPushersLocked()
	c.user = nil
	c.loaded = false
	c.mu.Unlock()

	if err := c.tracker.Clear(); err != nil {
		return fmt.Errorf("clear local stores: %w", err)
	}
	if err := c.remote.Logout(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	c.log.Info("logged out")
	return nil
}

// Close stops pushing and detaches from the stores. Pending debounced pushes are dropped;
// call SyncNow first to keep them.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.stopPushersLocked()
	c.loaded = false
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}

func (c *Coordinator) stopPushersLocked() {
	for _, p := range c.pushers {
		p.Stop()
	}
	c.pushers = nil
}
