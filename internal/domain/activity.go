package domain

import (
	"fmt"
	"maps"
	"math"
	"time"
)

// AddHours logs a practice session of hours on a fixed activity.
func AddHours(key ActivityKey, hours float64) Mutation {
	return onRecord("add hours", key, func(r *ActivityRecord, now time.Time) error {
		if !positive(hours) {
			return fmt.Errorf("hours %v: %w", hours, ErrInvalidValue)
		}
		logSession(r, hours, now)
		return nil
	})
}

// AddCustomHours logs a practice session on a custom activity.
func AddCustomHours(slug string, hours float64) Mutation {
	return onCustom("add custom hours", slug, func(r *ActivityRecord, now time.Time) error {
		if !positive(hours) {
			return fmt.Errorf("hours %v: %w", hours, ErrInvalidValue)
		}
		logSession(r, hours, now)
		return nil
	})
}

func setTotal(hours float64) func(r *ActivityRecord, _ time.Time) error {
	return func(r *ActivityRecord, _ time.Time) error {
		if !finite(hours) || hours < 0 {
			return fmt.Errorf("hours %v: %w", hours, ErrInvalidValue)
		}
		r.TotalHours = round2(hours)
		return nil
	}
}

// SetActivityTotalHours overwrites the running total of a fixed activity.
func SetActivityTotalHours(key ActivityKey, hours float64) Mutation {
	return onRecord("set total hours", key, setTotal(hours))
}

// SetCustomActivityTotalHours overwrites the running total of a custom activity.
func SetCustomActivityTotalHours(slug string, hours float64) Mutation {
	return onCustom("set custom total hours", slug, setTotal(hours))
}

func setGoal(minutes float64) func(r *ActivityRecord, _ time.Time) error {
	return func(r *ActivityRecord, _ time.Time) error {
		if !positive(minutes) {
			minutes = DefaultDailyGoalMinutes
		}
		r.DailyGoalMinutes = minutes
		return nil
	}
}

// SetDailyGoal sets the daily minutes target. Non-positive input restores the default.
func SetDailyGoal(key ActivityKey, minutes float64) Mutation {
	return onRecord("set daily goal", key, setGoal(minutes))
}

// SetCustomDailyGoal is SetDailyGoal for a custom activity.
func SetCustomDailyGoal(slug string, minutes float64) Mutation {
	return onCustom("set custom daily goal", slug, setGoal(minutes))
}

func addToday(minutes float64) func(r *ActivityRecord, now time.Time) error {
	return func(r *ActivityRecord, now time.Time) error {
		if !positive(minutes) {
			return fmt.Errorf("minutes %v: %w", minutes, ErrInvalidValue)
		}
		today := DayString(now)
		if r.TodayDate != today {
			r.TodayDate = today
			r.TodayMinutes = 0
		}
		r.TodayMinutes += minutes
		return nil
	}
}

// AddTodayMinutes adds to today's counter, restarting it when it belongs to an earlier day.
func AddTodayMinutes(key ActivityKey, minutes float64) Mutation {
	return onRecord("add today minutes", key, addToday(minutes))
}

// AddCustomTodayMinutes is AddTodayMinutes for a custom activity.
func AddCustomTodayMinutes(slug string, minutes float64) Mutation {
	return onCustom("add custom today minutes", slug, addToday(minutes))
}

func setBooks(count float64) func(r *ActivityRecord, _ time.Time) error {
	return func(r *ActivityRecord, _ time.Time) error {
		if !finite(count) {
			return fmt.Errorf("books %v: %w", count, ErrInvalidValue)
		}
		r.BooksRead = int(math.Max(0, math.Floor(count)))
		return nil
	}
}

// SetBooksRead sets the books-read counter of a language activity.
func SetBooksRead(key ActivityKey, count float64) Mutation {
	if key != Spanish && key != German {
		return reject("set books read", fmt.Errorf("activity %q: %w", key, ErrNotFound))
	}
	return onRecord("set books read", key, setBooks(count))
}

// SetCustomBooksRead sets the books-read counter of a custom activity.
func SetCustomBooksRead(slug string, count float64) Mutation {
	return onCustom("set custom books read", slug, setBooks(count))
}

// AddConcert counts one more oud performance.
func AddConcert() Mutation {
	return onRecord("add concert", Oud, func(r *ActivityRecord, now time.Time) error {
		r.TotalConcerts++
		r.LastSession = ptr(DayString(now))
		return nil
	})
}

// SetTotalConcerts overwrites the concert counter of a music activity.
func SetTotalConcerts(key ActivityKey, count float64) Mutation {
	if key != Oud && key != Violin {
		return reject("set total concerts", fmt.Errorf("activity %q: %w", key, ErrNotFound))
	}
	return onRecord("set total concerts", key, func(r *ActivityRecord, _ time.Time) error {
		if !finite(count) {
			return fmt.Errorf("concerts %v: %w", count, ErrInvalidValue)
		}
		r.TotalConcerts = int(math.Max(0, math.Round(count)))
		return nil
	})
}

// HideActivity removes a fixed activity from view. Its data is kept.
func HideActivity(key ActivityKey) Mutation {
	return func(s State, _ time.Time) (State, error) {
		if !key.Valid() {
			return s, fmt.Errorf("hide activity %q: %w", key, ErrNotFound)
		}
		hidden := maps.Clone(s.HiddenActivities)
		if hidden == nil {
			hidden = map[ActivityKey]bool{}
		}
		hidden[key] = true
		s.HiddenActivities = hidden
		return s, nil
	}
}

// RestoreActivity undoes HideActivity.
func RestoreActivity(key ActivityKey) Mutation {
	return func(s State, _ time.Time) (State, error) {
		if !s.HiddenActivities[key] {
			return s, fmt.Errorf("restore activity %q: not hidden: %w", key, ErrNotFound)
		}
		hidden := maps.Clone(s.HiddenActivities)
		delete(hidden, key)
		s.HiddenActivities = hidden
		return s, nil
	}
}

// CompleteOnboarding marks the first-run flow as done.
func CompleteOnboarding() Mutation {
	return func(s State, _ time.Time) (State, error) {
		s.HasCompletedOnboarding = true
		return s, nil
	}
}

func reject(op string, err error) Mutation {
	return func(s State, _ time.Time) (State, error) {
		return s, fmt.Errorf("%s: %w", op, err)
	}
}
