package domain

import (
	"fmt"
	"maps"
	"time"
)

// Mutation computes the next state from s. A returned error leaves the current state in
// place; errors matching ErrRejected mean the input was declined.
type Mutation func(s State, now time.Time) (State, error)

// Chain applies mutations in order, stopping at the first error.
func Chain(ms ...Mutation) Mutation {
	return func(s State, now time.Time) (State, error) {
		var err error
		for _, m := range ms {
			if s, err = m(s, now); err != nil {
				return s, err
			}
		}
		return s, nil
	}
}

// onRecord edits the record for key on a copy of s.
func onRecord(op string, key ActivityKey, fn func(r *ActivityRecord, now time.Time) error) Mutation {
	return func(s State, now time.Time) (State, error) {
		rec, ok := s.Record(key)
		if !ok {
			return s, fmt.Errorf("%s: activity %q: %w", op, key, ErrNotFound)
		}
		if err := fn(rec, now); err != nil {
			return s, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	}
}

// onCustom edits the record of the custom activity slug on a copy of s.
func onCustom(op, slug string, fn func(r *ActivityRecord, now time.Time) error) Mutation {
	return func(s State, now time.Time) (State, error) {
		entry, ok := s.CustomActivities[slug]
		if !ok {
			return s, fmt.Errorf("%s: custom activity %q: %w", op, slug, ErrNotFound)
		}
		if err := fn(&entry.Data, now); err != nil {
			return s, fmt.Errorf("%s: %w", op, err)
		}
		s.CustomActivities = maps.Clone(s.CustomActivities)
		s.CustomActivities[slug] = entry
		return s, nil
	}
}

// logSession credits hours to r. The streak moves at most once per calendar day.
func logSession(r *ActivityRecord, hours float64, now time.Time) {
	today := DayString(now)
	r.TotalHours = round2(r.TotalHours + hours)
	r.ThisWeekSessions++
	if r.LastSession == nil || *r.LastSession != today {
		r.CurrentStreak++
	}
	r.LastSession = ptr(today)
}

func checkIndex(index, n int) error {
	if index < 0 || index >= n {
		return fmt.Errorf("index %d of %d: %w", index, n, ErrIndexOutOfRange)
	}
	return nil
}

func removeAt[T any](items []T, index int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...)
}
