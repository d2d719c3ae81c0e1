// Package store holds versioned application state behind a typed container that persists
// every change to a storage substrate and notifies subscribers.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"example.com/lifetrack/internal/clock"
	"example.com/lifetrack/internal/logger"
	"example.com/lifetrack/internal/storage"
)

// ErrInvalidEnvelope reports a persisted or imported blob without the expected shape.
var ErrInvalidEnvelope = errors.New("invalid envelope")

// Envelope is the persisted form of a store: the whole state plus its schema version.
type Envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

// Config describes one store.
type Config[S any] struct {
	// Key names the substrate entry the envelope lives under.
	Key     string
	Version int
	Initial func(now time.Time) S
	// Normalize fills defaults after decoding. Optional.
	Normalize func(S) S
	// Migrate upgrades a decoded blob written at an older version. Optional.
	Migrate   func(state map[string]any, fromVersion int) map[string]any
	Substrate storage.Substrate
	Clock     clock.Clock
	Logger    *logger.Logger
}

// Store is a versioned state container. Apply is serialized; readers always see a whole
// snapshot.
type Store[S any] struct {
	cfg Config[S]

	// writeMu orders mutations and their notifications.
	writeMu sync.Mutex

	mu        sync.RWMutex
	state     S
	listeners []*listener[S]
}

type listener[S any] struct {
	fn func(S)
}

// Open loads the store from its substrate, migrating older envelopes and writing the
// upgraded envelope back.
func Open[S any](cfg Config[S]) (*Store[S], error) {
	if cfg.Key == "" || cfg.Substrate == nil || cfg.Initial == nil {
		return nil, errors.New("store: key, substrate and initial state are required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	s := &Store[S]{cfg: cfg}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Key returns the substrate key of the store.
func (s *Store[S]) Key() string { return s.cfg.Key }

// Version returns the schema version the store writes.
func (s *Store[S]) Version() int { return s.cfg.Version }

// Snapshot returns the current state.
func (s *Store[S]) Snapshot() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to run after every successful change, in registration order,
// on the goroutine that made the change. fn must not call back into Apply.
func (s *Store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	l := &listener[S]{fn: fn}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, cur := range s.listeners {
			if cur == l {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Apply runs m on the current snapshot. On success the new state is persisted, swapped in
// and announced to subscribers before Apply returns. On error nothing changes and the
// error is returned as is.
func (s *Store[S]) Apply(m func(S, time.Time) (S, error)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, err := m(s.Snapshot(), s.cfg.Clock.Now())
	if err != nil {
		return err
	}
	return s.commit(next)
}

// Overlay shallow-merges top-level fields onto the current state, as a sync pull does.
// Fields the state type does not know are ignored and a field that does not decode leaves
// the local value in place.
func (s *Store[S]) Overlay(fields map[string]json.RawMessage) error {
	if len(fields) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.cfg.Key, err)
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(current, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", s.cfg.Key, err)
	}
	now := s.cfg.Clock.Now()
	for k, v := range fields {
		one, _ := json.Marshal(map[string]json.RawMessage{k: v})
		trial := s.cfg.Initial(now)
		if err := json.Unmarshal(one, &trial); err != nil {
			s.cfg.Logger.Warn("ignoring malformed overlay field", "key", s.cfg.Key, "field", k, "error", err)
			continue
		}
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode overlay for %s: %w", s.cfg.Key, err)
	}
	next, err := s.decode(merged)
	if err != nil {
		return err
	}
	return s.commit(next)
}

// Reset discards the persisted envelope and returns to the initial state without
// notifying subscribers.
func (s *Store[S]) Reset() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.cfg.Substrate.Delete(s.cfg.Key); err != nil {
		return fmt.Errorf("delete %s: %w", s.cfg.Key, err)
	}
	s.mu.Lock()
	s.state = s.initial()
	s.mu.Unlock()
	return nil
}

func (s *Store[S]) commit(next S) error {
	if err := s.persist(next); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = next
	listeners := append([]*listener[S](nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(next)
	}
	return nil
}

func (s *Store[S]) persist(state S) error {
	raw, err := s.envelope(state)
	if err != nil {
		return err
	}
	if err := s.cfg.Substrate.Set(s.cfg.Key, raw); err != nil {
		return fmt.Errorf("persist %s: %w", s.cfg.Key, err)
	}
	return nil
}

func (s *Store[S]) envelope(state S) ([]byte, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.cfg.Key, err)
	}
	return json.Marshal(Envelope{State: body, Version: s.cfg.Version})
}

func (s *Store[S]) initial() S {
	st := s.cfg.Initial(s.cfg.Clock.Now())
	if s.cfg.Normalize != nil {
		st = s.cfg.Normalize(st)
	}
	return st
}

// decode lays a JSON object over a fresh initial state so absent fields keep defaults. When
// the whole object does not fit S, fields are laid one at a time and a field that fails to
// decode keeps its default.
func (s *Store[S]) decode(body []byte) (S, error) {
	now := s.cfg.Clock.Now()
	st := s.cfg.Initial(now)
	if err := json.Unmarshal(body, &st); err != nil {
		var fields map[string]json.RawMessage
		if ferr := json.Unmarshal(body, &fields); ferr != nil {
			var zero S
			return zero, fmt.Errorf("decode %s state: %w", s.cfg.Key, ferr)
		}
		st = s.cfg.Initial(now)
		for name, value := range fields {
			one, _ := json.Marshal(map[string]json.RawMessage{name: value})
			trial := s.cfg.Initial(now)
			if err := json.Unmarshal(one, &trial); err != nil {
				s.cfg.Logger.Warn("dropping malformed field", "key", s.cfg.Key, "field", name, "error", err)
				continue
			}
			if err := json.Unmarshal(one, &st); err != nil {
				return st, fmt.Errorf("decode %s field %s: %w", s.cfg.Key, name, err)
			}
		}
	}
	if s.cfg.Normalize != nil {
		st = s.cfg.Normalize(st)
	}
	return st, nil
}

func (s *Store[S]) load() error {
	raw, ok, err := s.cfg.Substrate.Get(s.cfg.Key)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.cfg.Key, err)
	}
	if !ok {
		s.state = s.initial()
		return nil
	}
	env, err := parseEnvelope(raw)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.cfg.Key, err)
	}
	body := []byte(env.State)
	migrated := false
	if env.Version < s.cfg.Version && s.cfg.Migrate != nil {
		body, err = s.migrate(body, env.Version)
		if err != nil {
			return err
		}
		migrated = true
	}
	st, err := s.decode(body)
	if err != nil {
		return err
	}
	s.state = st
	if migrated {
		s.cfg.Logger.Info("store migrated", "key", s.cfg.Key, "from", env.Version, "to", s.cfg.Version)
		return s.persist(st)
	}
	if env.Version > s.cfg.Version {
		s.cfg.Logger.Warn("store written by a newer version", "key", s.cfg.Key, "version", env.Version)
	}
	return nil
}

func (s *Store[S]) migrate(body []byte, from int) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode %s for migration: %w", s.cfg.Key, err)
	}
	out, err := json.Marshal(s.cfg.Migrate(doc, from))
	if err != nil {
		return nil, fmt.Errorf("encode migrated %s: %w", s.cfg.Key, err)
	}
	return out, nil
}

// parseEnvelope requires both top-level keys and an object state.
func parseEnvelope(raw []byte) (Envelope, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	state, hasState := top["state"]
	version, hasVersion := top["version"]
	if !hasState || !hasVersion {
		return Envelope{}, fmt.Errorf("%w: must contain both \"state\" and \"version\"", ErrInvalidEnvelope)
	}
	var v int
	if err := json.Unmarshal(version, &v); err != nil {
		return Envelope{}, fmt.Errorf("%w: version must be an integer", ErrInvalidEnvelope)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(state, &probe); err != nil || probe == nil {
		return Envelope{}, fmt.Errorf("%w: state must be an object", ErrInvalidEnvelope)
	}
	return Envelope{State: state, Version: v}, nil
}
