// Package tracker wires the activity and gamification stores onto a substrate.
package tracker

import (
	"fmt"
	"time"

	"example.com/lifetrack/internal/clock"
	"example.com/lifetrack/internal/domain"
	"example.com/lifetrack/internal/gamification"
	"example.com/lifetrack/internal/logger"
	"example.com/lifetrack/internal/migration"
	"example.com/lifetrack/internal/storage"
	"example.com/lifetrack/internal/store"
)

// Substrate keys of the local stores.
const (
	ActivityKey     = "activity-storage"
	GamificationKey = "gamification-store"
)

// Tracker owns the application state of one device.
type Tracker struct {
	activity     *store.Store[domain.State]
	gamification *store.Store[gamification.State]
	substrate    storage.Substrate
	log          *logger.Logger
}

type options struct {
	clock clock.Clock
	log   *logger.Logger
	seeds *migration.Seeds
}

// Option configures Open.
type Option func(*options)

func WithClock(c clock.Clock) Option { return func(o *options) { o.clock = c } }

func WithLogger(l *logger.Logger) Option { return func(o *options) { o.log = l } }

// WithSeeds overrides the migration seed table.
func WithSeeds(s *migration.Seeds) Option { return func(o *options) { o.seeds = s } }

// Open loads both stores, upgrading older activity envelopes.
func Open(sub storage.Substrate, opts ...Option) (*Tracker, error) {
	o := options{clock: clock.Real(), log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	migrator := migration.New(migration.WithClock(o.clock), migration.WithSeeds(o.seeds))

	activity, err := store.Open(store.Config[domain.State]{
		Key:       ActivityKey,
		Version:   migration.CurrentVersion,
		Initial:   domain.NewState,
		Normalize: domain.Normalize,
		Migrate:   migrator.Migrate,
		Substrate: sub,
		Clock:     o.clock,
		Logger:    o.log,
	})
	if err != nil {
		return nil, fmt.Errorf("open activity store: %w", err)
	}
	game, err := store.Open(store.Config[gamification.State]{
		Key:       GamificationKey,
		Version:   gamification.Version,
		Initial:   func(time.Time) gamification.State { return gamification.NewState() },
		Normalize: gamification.Normalize,
		Substrate: sub,
		Clock:     o.clock,
		Logger:    o.log,
	})
	if err != nil {
		return nil, fmt.Errorf("open gamification store: %w", err)
	}
	return &Tracker{activity: activity, gamification: game, substrate: sub, log: o.log}, nil
}

// Activity exposes the activity store for subscriptions, export and sync.
func (t *Tracker) Activity() *store.Store[domain.State] { return t.activity }

// Gamification exposes the gamification store.
func (t *Tracker) Gamification() *store.Store[gamification.State] { return t.gamification }

// Substrate returns the storage the stores write to.
func (t *Tracker) Substrate() storage.Substrate { return t.substrate }

// State returns the current activity snapshot.
func (t *Tracker) State() domain.State { return t.activity.Snapshot() }

// Game returns the current gamification snapshot.
func (t *Tracker) Game() gamification.State { return t.gamification.Snapshot() }

// Do applies an activity mutation.
func (t *Tracker) Do(m domain.Mutation) error {
	if err := t.activity.Apply(m); err != nil {
		if domain.IsRejected(err) {
			t.log.Debug("activity mutation rejected", "error", err)
		}
		return err
	}
	return nil
}

// Play applies a gamification mutation.
func (t *Tracker) Play(m gamification.Mutation) error {
	return t.gamification.Apply(m)
}

// AddGymExercise registers an exercise and returns its id, or "" for a blank name.
func (t *Tracker) AddGymExercise(name string, category domain.ExerciseCategory) (string, error) {
	id, m := domain.AddGymExercise(name, category)
	if err := t.Do(m); err != nil {
		return "", err
	}
	return id, nil
}

// AddDailyActivity appends a checklist item and returns its id.
func (t *Tracker) AddDailyActivity(name, category string) (string, error) {
	id, m := domain.AddDailyActivity(name, category)
	if err := t.Do(m); err != nil {
		return "", err
	}
	return id, nil
}

// CreateCustomActivity adds a custom activity named name and returns its slug.
func (t *Tracker) CreateCustomActivity(name string, template domain.Template) (string, error) {
	slug, m := domain.CreateCustomActivity(name, template)
	if err := t.Do(m); err != nil {
		return "", err
	}
	return slug, nil
}

// Clear removes both local stores, as on logout.
func (t *Tracker) Clear() error {
	if err := t.activity.Reset(); err != nil {
		return err
	}
	return t.gamification.Reset()
}
