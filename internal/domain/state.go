// Package domain defines the tracked-activity schema and the pure state transitions that
// operate on it.
package domain

import (
	"sort"
	"time"
)

// ActivityKey names one of the fixed activities.
type ActivityKey string

const (
	Boxing  ActivityKey = "boxing"
	Gym     ActivityKey = "gym"
	Oud     ActivityKey = "oud"
	Violin  ActivityKey = "violin"
	Spanish ActivityKey = "spanish"
	German  ActivityKey = "german"
)

// CoreActivities lists the fixed activity set in display order.
var CoreActivities = []ActivityKey{Boxing, Gym, Oud, Violin, Spanish, German}

// Valid reports whether k is one of the fixed activities.
func (k ActivityKey) Valid() bool {
	for _, key := range CoreActivities {
		if key == k {
			return true
		}
	}
	return false
}

// Template selects which page layout a custom activity borrows.
type Template string

const (
	TemplateNone     Template = "none"
	TemplateBoxing   Template = "boxing"
	TemplateGym      Template = "gym"
	TemplateMusic    Template = "music"
	TemplateLanguage Template = "language"
)

// ParseTemplate maps free text to a Template, falling back to TemplateNone.
func ParseTemplate(v string) Template {
	switch t := Template(v); t {
	case TemplateBoxing, TemplateGym, TemplateMusic, TemplateLanguage:
		return t
	default:
		return TemplateNone
	}
}

// ExerciseCategory groups gym exercises.
type ExerciseCategory string

const (
	CategoryPush  ExerciseCategory = "push"
	CategoryPull  ExerciseCategory = "pull"
	CategoryLegs  ExerciseCategory = "legs"
	CategoryOther ExerciseCategory = "other"
)

// ParseCategory maps free text to an ExerciseCategory, falling back to CategoryOther.
func ParseCategory(v string) ExerciseCategory {
	switch c := ExerciseCategory(v); c {
	case CategoryPush, CategoryPull, CategoryLegs:
		return c
	default:
		return CategoryOther
	}
}

// FitnessPoint is one monthly fitness test score.
type FitnessPoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
	TS    *int64  `json:"ts,omitempty"`
}

// TapePoint is one weekly entry of fight footage watched, in hours per discipline.
type TapePoint struct {
	Date       string  `json:"date"`
	TS         *int64  `json:"ts,omitempty"`
	Boxing     float64 `json:"boxing,omitempty"`
	Kickboxing float64 `json:"kickboxing,omitempty"`
	MMA        float64 `json:"mma,omitempty"`
}

// WeightPoint is one body-weight measurement.
type WeightPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	TS     *int64  `json:"ts,omitempty"`
}

// ExercisePoint is one logged working set for a gym exercise.
type ExercisePoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	Reps   *int    `json:"reps"`
	TS     *int64  `json:"ts,omitempty"`
}

// ActivityRecord is the bag of counters and series kept per activity.
type ActivityRecord struct {
	TotalHours       float64 `json:"totalHours"`
	ThisWeekSessions int     `json:"thisWeekSessions"`
	CurrentStreak    int     `json:"currentStreak"`
	LastSession      *string `json:"lastSession"`

	DailyGoalMinutes float64 `json:"dailyGoalMinutes,omitempty"`
	TodayMinutes     float64 `json:"todayMinutes"`
	TodayDate        string  `json:"todayDate,omitempty"`

	FitnessTestHighest   float64        `json:"fitnessTestHighest,omitempty"`
	FitnessTestThisMonth float64        `json:"fitnessTestThisMonth,omitempty"`
	FitnessTestTrend     []FitnessPoint `json:"fitnessTestTrend,omitempty"`

	BoxingTapeHours     float64     `json:"boxingTapeHours,omitempty"`
	KickboxingTapeHours float64     `json:"kickboxingTapeHours,omitempty"`
	MMATapeHours        float64     `json:"mmaTapeHours,omitempty"`
	BoxingTapeTrend     []TapePoint `json:"boxingTapeTrend,omitempty"`

	TotalFights int `json:"totalFights,omitempty"`
	Wins        int `json:"wins,omitempty"`
	Losses      int `json:"losses,omitempty"`
	Draws       int `json:"draws,omitempty"`

	TotalConcerts int `json:"totalConcerts,omitempty"`
	BooksRead     int `json:"booksRead,omitempty"`

	PowerLiftNames   []string      `json:"powerLiftNames,omitempty"`
	PowerLiftWeights []float64     `json:"powerLiftWeights,omitempty"`
	WeightTrend      []WeightPoint `json:"weightTrend,omitempty"`
	GoalWeight       float64       `json:"goalWeight,omitempty"`

	// Custom gym-template activities keep their own exercise catalog.
	GymExerciseNames    map[string]string          `json:"gymExerciseNames,omitempty"`
	GymExerciseProgress map[string][]ExercisePoint `json:"gymExerciseProgress,omitempty"`
}

// CustomActivity is a user-created activity keyed by its slug.
type CustomActivity struct {
	Name     string         `json:"name"`
	Template Template       `json:"template,omitempty"`
	Data     ActivityRecord `json:"data"`
}

// DailyActivityItem is one entry of the daily checklist.
type DailyActivityItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// DailyCompletion records which checklist items were ticked on Date. A Date other than
// today means nothing is ticked.
type DailyCompletion struct {
	Date string          `json:"date,omitempty"`
	Done map[string]bool `json:"done,omitempty"`
}

// State is the whole activity store.
type State struct {
	HasCompletedOnboarding bool `json:"hasCompletedOnboarding"`

	Boxing  ActivityRecord `json:"boxing"`
	Gym     ActivityRecord `json:"gym"`
	Oud     ActivityRecord `json:"oud"`
	Violin  ActivityRecord `json:"violin"`
	Spanish ActivityRecord `json:"spanish"`
	German  ActivityRecord `json:"german"`

	CustomActivities map[string]CustomActivity `json:"customActivities"`
	HiddenActivities map[ActivityKey]bool      `json:"hiddenActivities"`

	DailyActivityNames []string            `json:"dailyActivityNames"`
	DailyActivityList  []DailyActivityItem `json:"dailyActivityList"`
	DailyCompletion    DailyCompletion     `json:"dailyCompletion"`

	GymExerciseNames      map[string]string           `json:"gymExerciseNames"`
	GymExerciseCategories map[string]ExerciseCategory `json:"gymExerciseCategories"`
	GymExerciseProgress   map[string][]ExercisePoint  `json:"gymExerciseProgress"`
}

// Record returns a pointer to the record for key inside s.
func (s *State) Record(key ActivityKey) (*ActivityRecord, bool) {
	switch key {
	case Boxing:
		return &s.Boxing, true
	case Gym:
		return &s.Gym, true
	case Oud:
		return &s.Oud, true
	case Violin:
		return &s.Violin, true
	case Spanish:
		return &s.Spanish, true
	case German:
		return &s.German, true
	}
	return nil, false
}

// Visible reports whether a fixed activity is shown.
func (s State) Visible(key ActivityKey) bool {
	return !s.HiddenActivities[key]
}

// CustomActivityView pairs a custom activity with its slug.
type CustomActivityView struct {
	Slug string
	CustomActivity
}

// ListCustomActivities returns custom activities ordered by slug.
func (s State) ListCustomActivities() []CustomActivityView {
	out := make([]CustomActivityView, 0, len(s.CustomActivities))
	for slug, entry := range s.CustomActivities {
		out = append(out, CustomActivityView{Slug: slug, CustomActivity: entry})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// TodayMinutes returns the minutes logged today, treating a stale counter as zero.
func TodayMinutes(r ActivityRecord, now time.Time) float64 {
	if r.TodayDate != DayString(now) {
		return 0
	}
	return r.TodayMinutes
}

// Projection is the allow-listed set of fields that leave the device when syncing.
func (s State) Projection() map[string]any {
	return map[string]any{
		"boxing":                 s.Boxing,
		"gym":                    s.Gym,
		"oud":                    s.Oud,
		"violin":                 s.Violin,
		"spanish":                s.Spanish,
		"german":                 s.German,
		"customActivities":       s.CustomActivities,
		"hiddenActivities":       s.HiddenActivities,
		"hasCompletedOnboarding": s.HasCompletedOnboarding,
		"dailyActivityNames":     s.DailyActivityNames,
		"dailyActivityList":      s.DailyActivityList,
		"dailyCompletion":        s.DailyCompletion,
		"gymExerciseNames":       s.GymExerciseNames,
		"gymExerciseCategories":  s.GymExerciseCategories,
		"gymExerciseProgress":    s.GymExerciseProgress,
	}
}
