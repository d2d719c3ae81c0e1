package datasync

import (
	"context"
	"sync"
	"time"

	"example.com/lifetrack/internal/clock"
	"example.com/lifetrack/internal/logger"
)

// DefaultDebounce is the quiet period before a scheduled push fires.
const DefaultDebounce = time.Second

const pushTimeout = 30 * time.Second

// PushFunc sends payload to the remote store under key.
type PushFunc func(ctx context.Context, key string, payload any) error

type phase int

const (
	idle phase = iota
	scheduled
	inFlight
	inFlightDirty
)

func (p phase) String() string {
	switch p {
	case scheduled:
		return "scheduled"
	case inFlight:
		return "in-flight"
	case inFlightDirty:
		return "in-flight-dirty"
	default:
		return "idle"
	}
}

// Pusher debounces pushes for one remote key. At most one push per key is in flight, and the
// payload sent is always the most recent one handed to Notify.
type Pusher struct {
	key   string
	push  PushFunc
	clock clock.Clock
	delay time.Duration
	log   *logger.Logger

	mu      sync.Mutex
	phase   phase
	latest  any
	pending bool
	timer   clock.Timer
	gen     uint64
	done    chan struct{}
	stopped bool
}

// NewPusher creates an idle pusher for key.
func NewPusher(key string, push PushFunc, clk clock.Clock, delay time.Duration, log *logger.Logger) *Pusher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pusher{key: key, push: push, clock: clk, delay: delay, log: log.With("key", key)}
}

// Notify records payload as the latest state and (re)starts the debounce window.
func (p *Pusher) Notify(payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.latest = payload
	p.pending = true
	switch p.phase {
	case idle:
		p.schedule()
	case scheduled:
		recordCoalesced(p.key)
		p.schedule()
	case inFlight:
		p.phase = inFlightDirty
	case inFlightDirty:
		recordCoalesced(p.key)
	}
}

// schedule arms a fresh timer, replacing any pending one. Callers hold mu.
func (p *Pusher) schedule() {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.phase = scheduled
	p.timer = p.clock.AfterFunc(p.delay, func() { p.fire(gen) })
}

func (p *Pusher) fire(gen uint64) {
	p.mu.Lock()
	if p.stopped || p.phase != scheduled || gen != p.gen {
		p.mu.Unlock()
		return
	}
	payload := p.begin()
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	if err := p.send(ctx, payload); err != nil {
		p.log.Warn("debounced push failed", "error", err)
	}
}

// begin moves to in-flight and claims the latest payload. Callers hold mu.
func (p *Pusher) begin() any {
	p.timer = nil
	p.phase = inFlight
	p.pending = false
	p.done = make(chan struct{})
	return p.latest
}

func (p *Pusher) send(ctx context.Context, payload any) error {
	err := p.push(ctx, p.key, payload)
	recordPush(p.key, err, p.clock.Now())

	p.mu.Lock()
	defer p.mu.Unlock()
	close(p.done)
	p.done = nil
	if p.phase == inFlightDirty && !p.stopped {
		p.schedule()
	} else {
		p.phase = idle
	}
	return err
}

// Flush pushes the latest payload now, skipping the debounce window. It waits for an
// in-flight push to finish first and returns the push error. Without a pending payload it
// does nothing.
func (p *Pusher) Flush(ctx context.Context) error {
	p.mu.Lock()
	for p.phase == inFlight || p.phase == inFlightDirty {
		done := p.done
		p.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		p.mu.Lock()
	}
	if !p.pending {
		p.mu.Unlock()
		return nil
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	payload := p.begin()
	p.mu.Unlock()

	return p.send(ctx, payload)
}

// Stop cancels a scheduled push and ignores later notifications. An in-flight push is left
// to finish.
func (p *Pusher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.pending = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.phase == scheduled {
		p.phase = idle
	}
}

func (p *Pusher) state() phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}
