package domain

import (
	"fmt"
	"slices"
	"time"
)

// TemplateName selects a starter dataset offered during onboarding.
type TemplateName string

const (
	TemplatePersonalDev TemplateName = "personal-dev"
	TemplateAthlete     TemplateName = "athlete"
	TemplatePolyglot    TemplateName = "polyglot"
	TemplateFitness     TemplateName = "fitness"
	TemplateBlank       TemplateName = "blank"
)

// TemplateNames lists the starter datasets in menu order.
var TemplateNames = []TemplateName{TemplatePersonalDev, TemplateAthlete, TemplatePolyglot, TemplateFitness, TemplateBlank}

type starter struct {
	records map[ActivityKey]func(r ActivityRecord, now time.Time) ActivityRecord
	daily   []DailyActivityItem
}

func items(names ...[2]string) []DailyActivityItem {
	out := make([]DailyActivityItem, len(names))
	for i, n := range names {
		out[i] = DailyActivityItem{ID: fmt.Sprint(i + 1), Name: n[0], Category: n[1]}
	}
	return out
}

func lifts(names []string, weights ...float64) func(r ActivityRecord, now time.Time) ActivityRecord {
	return func(r ActivityRecord, _ time.Time) ActivityRecord {
		r.PowerLiftNames = slices.Clone(names)
		r.PowerLiftWeights = slices.Clone(weights)
		r.WeightTrend = []WeightPoint{}
		return r
	}
}

func emptyBoxing(r ActivityRecord, _ time.Time) ActivityRecord {
	r.FitnessTestTrend = []FitnessPoint{}
	r.BoxingTapeTrend = []TapePoint{}
	return r
}

var starters = map[TemplateName]starter{
	TemplatePersonalDev: {
		records: map[ActivityKey]func(ActivityRecord, time.Time) ActivityRecord{
			Boxing: func(r ActivityRecord, now time.Time) ActivityRecord {
				r = emptyBoxing(r, now)
				r.TotalHours, r.ThisWeekSessions, r.CurrentStreak = 50, 3, 5
				return r
			},
			Gym: func(r ActivityRecord, now time.Time) ActivityRecord {
				r = lifts([]string{"Squats", "Bench Press", "Rows", "Hip Thrusts"}, 60, 40, 40, 40)(r, now)
				r.TotalHours = 30
				return r
			},
			Spanish: func(r ActivityRecord, _ time.Time) ActivityRecord {
				r.TotalHours, r.BooksRead = 100, 2
				return r
			},
			Oud: func(r ActivityRecord, _ time.Time) ActivityRecord {
				r.TotalHours = 25
				return r
			},
		},
		daily: items(
			[2]string{"Spanish practice", "Learning"},
			[2]string{"Oud 15 min", "Music"},
			[2]string{"Gym session", "Fitness"},
		),
	},
	TemplateAthlete: {
		records: map[ActivityKey]func(ActivityRecord, time.Time) ActivityRecord{
			Boxing: func(r ActivityRecord, now time.Time) ActivityRecord {
				r = emptyBoxing(r, now)
				r.TotalHours, r.ThisWeekSessions, r.CurrentStreak = 150, 5, 10
				r.TotalFights, r.Wins, r.Losses = 3, 2, 1
				return r
			},
			Gym: func(r ActivityRecord, now time.Time) ActivityRecord {
				r = lifts([]string{"Squats", "Bench Press", "Deadlift", "Overhead Press"}, 100, 80, 120, 50)(r, now)
				r.TotalHours = 200
				r.WeightTrend = []WeightPoint{{Date: "Week 1", Weight: 85, TS: ptr(now.Add(-weekStep).UnixMilli())}}
				return r
			},
		},
		daily: items(
			[2]string{"Morning cardio", "Fitness"},
			[2]string{"Strength training", "Fitness"},
			[2]string{"Boxing practice", "Combat"},
			[2]string{"Meal prep", "Health"},
		),
	},
	TemplatePolyglot: {
		records: map[ActivityKey]func(ActivityRecord, time.Time) ActivityRecord{
			Spanish: func(r ActivityRecord, _ time.Time) ActivityRecord {
				r.TotalHours, r.BooksRead, r.ThisWeekSessions, r.CurrentStreak = 300, 5, 4, 15
				return r
			},
			German: func(r ActivityRecord, _ time.Time) ActivityRecord {
				r.TotalHours, r.BooksRead, r.ThisWeekSessions, r.CurrentStreak = 200, 3, 4, 12
				return r
			},
		},
		daily: items(
			[2]string{"Spanish writing", "Learning"},
			[2]string{"German writing", "Learning"},
			[2]string{"Language exchange", "Social"},
			[2]string{"Watch foreign films", "Entertainment"},
		),
	},
	TemplateFitness: {
		records: map[ActivityKey]func(ActivityRecord, time.Time) ActivityRecord{
			Gym: func(r ActivityRecord, now time.Time) ActivityRecord {
				r = lifts([]string{"Squats", "Bench Press", "Rows", "Hip Thrusts"}, 120, 90, 80, 100)(r, now)
				r.TotalHours = 250
				r.WeightTrend = []WeightPoint{
					{Date: "Month 1", Weight: 80, TS: ptr(now.Add(-monthStep).UnixMilli())},
					{Date: "Now", Weight: 85, TS: ptr(now.UnixMilli())},
				}
				return r
			},
		},
		daily: items(
			[2]string{"Morning workout", "Fitness"},
			[2]string{"Protein shake", "Health"},
			[2]string{"Track calories", "Health"},
			[2]string{"Stretch routine", "Recovery"},
		),
	},
	TemplateBlank: {
		records: map[ActivityKey]func(ActivityRecord, time.Time) ActivityRecord{
			Boxing:  emptyBoxing,
			Gym:     lifts(DefaultPowerLiftNames, 0, 0, 0, 0),
			Oud:     func(r ActivityRecord, _ time.Time) ActivityRecord { return r },
			Spanish: func(r ActivityRecord, _ time.Time) ActivityRecord { return r },
			German:  func(r ActivityRecord, _ time.Time) ActivityRecord { return r },
		},
		daily: []DailyActivityItem{},
	},
}

// LoadTemplate replaces the activities a starter dataset defines with fresh records,
// installs its checklist and completes onboarding. Activities the dataset omits keep
// their data.
func LoadTemplate(name TemplateName) Mutation {
	return func(s State, now time.Time) (State, error) {
		st, ok := starters[name]
		if !ok {
			return s, fmt.Errorf("load template %q: %w", name, ErrNotFound)
		}
		for key, build := range st.records {
			rec, _ := s.Record(key)
			*rec = build(NewRecord(now), now)
		}
		s.DailyActivityList = slices.Clone(st.daily)
		s.HasCompletedOnboarding = true
		return s, nil
	}
}
