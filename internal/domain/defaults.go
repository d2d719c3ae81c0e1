package domain

import (
	"slices"
	"time"
)

// DefaultDailyGoalMinutes applies whenever a record carries no positive goal.
const DefaultDailyGoalMinutes = 30

const (
	MinPowerLifts = 3
	MaxPowerLifts = 6
)

// DefaultPowerLiftNames seeds the gym's headline lifts.
var DefaultPowerLiftNames = []string{"Squats", "Bench Press", "Rows / Lat Pulldowns", "Hip Thrusts"}

// DefaultPowerLiftWeights backs records that predate per-lift weights.
var DefaultPowerLiftWeights = []float64{100, 50, 50, 50}

// NewRecord returns an empty activity record for the day of now.
func NewRecord(now time.Time) ActivityRecord {
	return ActivityRecord{
		DailyGoalMinutes: DefaultDailyGoalMinutes,
		TodayDate:        DayString(now),
	}
}

// NewState returns the store contents of a fresh install.
func NewState(now time.Time) State {
	s := State{
		Boxing:  NewRecord(now),
		Gym:     NewRecord(now),
		Oud:     NewRecord(now),
		Violin:  NewRecord(now),
		Spanish: NewRecord(now),
		German:  NewRecord(now),

		CustomActivities:      map[string]CustomActivity{},
		HiddenActivities:      map[ActivityKey]bool{},
		DailyActivityNames:    []string{},
		DailyActivityList:     []DailyActivityItem{},
		GymExerciseNames:      map[string]string{},
		GymExerciseCategories: map[string]ExerciseCategory{},
		GymExerciseProgress:   map[string][]ExercisePoint{},
	}
	s.Boxing.FitnessTestTrend = []FitnessPoint{}
	s.Boxing.BoxingTapeTrend = []TapePoint{}
	s.Gym.PowerLiftNames = slices.Clone(DefaultPowerLiftNames)
	s.Gym.PowerLiftWeights = make([]float64, len(DefaultPowerLiftNames))
	s.Gym.WeightTrend = []WeightPoint{}
	return s
}

// Normalize fills every missing optional field with its default. It never discards data.
func Normalize(s State) State {
	if s.CustomActivities == nil {
		s.CustomActivities = map[string]CustomActivity{}
	}
	if s.HiddenActivities == nil {
		s.HiddenActivities = map[ActivityKey]bool{}
	}
	if s.DailyActivityNames == nil {
		s.DailyActivityNames = []string{}
	}
	if s.DailyActivityList == nil {
		s.DailyActivityList = []DailyActivityItem{}
	}
	if s.GymExerciseNames == nil {
		s.GymExerciseNames = map[string]string{}
	}
	if s.GymExerciseCategories == nil {
		s.GymExerciseCategories = map[string]ExerciseCategory{}
	}
	if s.GymExerciseProgress == nil {
		s.GymExerciseProgress = map[string][]ExercisePoint{}
	}
	for _, key := range CoreActivities {
		rec, _ := s.Record(key)
		normalizeRecord(rec)
	}
	if len(s.Gym.PowerLiftNames) == 0 {
		s.Gym.PowerLiftNames = slices.Clone(DefaultPowerLiftNames)
	}
	s.Gym.PowerLiftWeights = fitWeights(s.Gym.PowerLiftWeights, len(s.Gym.PowerLiftNames))

	var custom map[string]CustomActivity
	for slug, entry := range s.CustomActivities {
		if entry.Data.DailyGoalMinutes > 0 && entry.Template != "" {
			continue
		}
		if custom == nil {
			custom = make(map[string]CustomActivity, len(s.CustomActivities))
			for k, v := range s.CustomActivities {
				custom[k] = v
			}
		}
		normalizeRecord(&entry.Data)
		if entry.Template == "" {
			entry.Template = TemplateNone
		}
		custom[slug] = entry
	}
	if custom != nil {
		s.CustomActivities = custom
	}
	return s
}

func normalizeRecord(r *ActivityRecord) {
	if !positive(r.DailyGoalMinutes) {
		r.DailyGoalMinutes = DefaultDailyGoalMinutes
	}
}

// fitWeights pads or truncates weights to n entries.
func fitWeights(weights []float64, n int) []float64 {
	if len(weights) == n {
		return weights
	}
	out := make([]float64, n)
	copy(out, weights)
	return out
}
