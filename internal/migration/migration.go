// Package migration upgrades persisted activity blobs of any earlier shape to the current
// schema version.
package migration

import (
	"math"
	"strconv"
	"time"

	"example.com/lifetrack/internal/clock"
	"example.com/lifetrack/internal/domain"
)

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 13

// Step is one upgrade pass. Steps are total and idempotent: they never fail and running one
// twice changes nothing the first run did not.
type Step struct {
	Name  string
	Apply func(state map[string]any, env Env)
}

// Env carries what steps need beyond the blob itself.
type Env struct {
	Now   time.Time
	Seeds *Seeds
}

// Migrator runs the upgrade chain.
type Migrator struct {
	seeds *Seeds
	clock clock.Clock
	steps []Step
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithSeeds replaces the built-in seed table.
func WithSeeds(s *Seeds) Option {
	return func(m *Migrator) {
		if s != nil {
			m.seeds = s
		}
	}
}

// WithClock sets the time source used for seeded timestamps and day strings.
func WithClock(c clock.Clock) Option {
	return func(m *Migrator) {
		if c != nil {
			m.clock = c
		}
	}
}

// New builds a Migrator over the standard chain.
func New(opts ...Option) *Migrator {
	m := &Migrator{clock: clock.Real(), steps: Chain()}
	for _, opt := range opts {
		opt(m)
	}
	if m.seeds == nil {
		m.seeds = DefaultSeeds()
	}
	return m
}

// Chain returns the upgrade steps in the order they run.
func Chain() []Step {
	return []Step{
		{Name: "malformed-records", Apply: dropMalformedRecords},
		{Name: "containers", Apply: ensureContainers},
		{Name: "boxing", Apply: upgradeBoxing},
		{Name: "gym", Apply: upgradeGym},
		{Name: "exercise-catalog", Apply: seedCatalog},
		{Name: "music-and-languages", Apply: upgradeMusicAndLanguages},
		{Name: "daily-goal", Apply: backfillDailyGoal},
		{Name: "onboarding", Apply: ensureOnboarding},
	}
}

// Migrate returns an upgraded deep copy of persisted. Older blobs carry no reliable record
// of which fields they already have, so any fromVersion below CurrentVersion runs the whole
// chain. A current blob is copied unchanged and a nil blob is returned as is.
func (m *Migrator) Migrate(persisted map[string]any, fromVersion int) map[string]any {
	if persisted == nil {
		return nil
	}
	state := deepCopy(persisted).(map[string]any)
	if fromVersion >= CurrentVersion {
		return state
	}
	env := Env{Now: m.clock.Now(), Seeds: m.seeds}
	for _, step := range m.steps {
		step.Apply(state, env)
	}
	return state
}

// dropMalformedRecords removes core records and custom entries that are not objects so the
// later steps treat them as absent.
func dropMalformedRecords(state map[string]any, _ Env) {
	for _, key := range domain.CoreActivities {
		if v, ok := state[string(key)]; ok {
			if _, isObject := v.(map[string]any); !isObject {
				delete(state, string(key))
			}
		}
	}
	custom, ok := child(state, "customActivities")
	if !ok {
		return
	}
	for slug, entry := range custom {
		e, isObject := entry.(map[string]any)
		if !isObject {
			delete(custom, slug)
			continue
		}
		if v, has := e["data"]; has {
			if _, isObject := v.(map[string]any); !isObject {
				delete(e, "data")
			}
		}
	}
}

func ensureContainers(state map[string]any, env Env) {
	ensureObject(state, "customActivities")
	ensureObject(state, "hiddenActivities")
	ensureObject(state, "gymExerciseNames")
	ensureObject(state, "gymExerciseCategories")
	ensureObject(state, "gymExerciseProgress")

	if _, ok := list(state, "dailyActivityNames"); !ok {
		names := make([]any, len(env.Seeds.Daily))
		for i, d := range env.Seeds.Daily {
			names[i] = d.Name
		}
		state["dailyActivityNames"] = names
	}
	if _, ok := list(state, "dailyActivityList"); !ok {
		names, _ := list(state, "dailyActivityNames")
		items := make([]any, 0, len(names))
		for i, n := range names {
			category := "General"
			if i < len(env.Seeds.Daily) {
				category = env.Seeds.Daily[i].Category
			}
			items = append(items, object{"id": strconv.Itoa(i + 1), "name": n, "category": category})
		}
		state["dailyActivityList"] = items
	}
}

// applyRecordSeed creates, defaults and ratchets one activity record.
func applyRecordSeed(state map[string]any, key string, seed RecordSeed) {
	rec, ok := child(state, key)
	if !ok {
		if seed.Create != nil {
			state[key] = deepCopy(seed.Create)
		}
		return
	}
	for k, v := range seed.Defaults {
		setDefault(rec, k, v)
	}
	for k, minimum := range seed.Minimums {
		if n, ok := number(rec[k]); !ok || n < minimum {
			rec[k] = minimum
		}
	}
	if seed.Floor > 0 {
		n, ok := number(rec["totalHours"])
		if (ok && n < seed.Floor) || (!ok && seed.FloorWhenMissing) {
			rec["totalHours"] = seed.Floor
		}
	}
}

func upgradeBoxing(state map[string]any, env Env) {
	boxing, ok := child(state, string(domain.Boxing))
	if !ok {
		return
	}
	if _, has := boxing["mmaTapeHours"]; !has {
		if legacy, had := boxing["fightTapeHours"]; had {
			boxing["mmaTapeHours"] = legacy
			delete(boxing, "fightTapeHours")
		}
	}
	applyRecordSeed(state, string(domain.Boxing), env.Seeds.Records[string(domain.Boxing)])

	if trend, ok := list(boxing, "fitnessTestTrend"); !ok || len(trend) == 0 {
		boxing["fitnessTestTrend"] = fitnessHistory(env)
	}

	trend, _ := list(boxing, "fitnessTestTrend")
	highest, last, found := 0.0, 0.0, false
	for _, p := range trend {
		point, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if score, ok := number(point["score"]); ok {
			highest = math.Max(highest, score)
			last, found = score, true
		}
	}
	if found {
		current, _ := number(boxing["fitnessTestHighest"])
		boxing["fitnessTestHighest"] = math.Max(current, highest)
		boxing["fitnessTestThisMonth"] = last
	}
}

// fitnessHistory builds one point per month on the 1st, oldest first, ending this month.
func fitnessHistory(env Env) []any {
	scores := env.Seeds.Fitness.Scores
	now := env.Now
	out := make([]any, 0, len(scores))
	for i, score := range scores {
		back := len(scores) - 1 - i
		d := time.Date(now.Year(), now.Month()-time.Month(back), 1, 0, 0, 0, 0, now.Location())
		out = append(out, object{"date": d.Format("Jan"), "score": score, "ts": d.UnixMilli()})
	}
	return out
}

func upgradeGym(state map[string]any, env Env) {
	applyRecordSeed(state, string(domain.Gym), env.Seeds.Records[string(domain.Gym)])
}

func seedCatalog(state map[string]any, env Env) {
	names := ensureObject(state, "gymExerciseNames")
	categories := ensureObject(state, "gymExerciseCategories")
	progress := ensureObject(state, "gymExerciseProgress")

	catalog := env.Seeds.Exercises.all()
	for _, e := range catalog {
		if !truthyString(names[e.ID]) {
			names[e.ID] = e.Name
			categories[e.ID] = e.category
		}
	}
	if len(progress) > 0 {
		return
	}
	ts := env.Now.UnixMilli()
	for _, e := range catalog {
		if e.Weight <= 0 || !truthyString(names[e.ID]) {
			continue
		}
		progress[e.ID] = []any{object{
			"date":   env.Seeds.SampleDate,
			"weight": e.Weight,
			"reps":   e.Reps,
			"ts":     ts,
		}}
	}
}

func upgradeMusicAndLanguages(state map[string]any, env Env) {
	for _, key := range []domain.ActivityKey{domain.Oud, domain.Violin, domain.Spanish, domain.German} {
		applyRecordSeed(state, string(key), env.Seeds.Records[string(key)])
	}
}

func ensureOnboarding(state map[string]any, _ Env) {
	if _, ok := state["hasCompletedOnboarding"].(bool); !ok {
		state["hasCompletedOnboarding"] = false
	}
}

func backfillDailyGoal(state map[string]any, env Env) {
	today := domain.DayString(env.Now)
	fill := func(rec object) {
		setDefault(rec, "dailyGoalMinutes", env.Seeds.DailyGoalMinutes)
		setDefault(rec, "todayMinutes", 0)
		setDefault(rec, "todayDate", today)
	}
	for _, key := range domain.CoreActivities {
		if rec, ok := child(state, string(key)); ok {
			fill(rec)
		}
	}
	custom, _ := child(state, "customActivities")
	for _, entry := range custom {
		e, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if data, ok := child(e, "data"); ok {
			fill(data)
		}
	}
}
