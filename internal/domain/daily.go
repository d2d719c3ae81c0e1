package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UpdateDailyActivityName renames a legacy checklist name by position.
func UpdateDailyActivityName(index int, name string) Mutation {
	return func(s State, _ time.Time) (State, error) {
		if err := checkIndex(index, len(s.DailyActivityNames)); err != nil {
			return s, fmt.Errorf("rename daily name: %w", err)
		}
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return s, fmt.Errorf("rename daily name: %w", ErrBlankName)
		}
		s.DailyActivityNames = slices.Clone(s.DailyActivityNames)
		s.DailyActivityNames[index] = trimmed
		return s, nil
	}
}

// AddDailyActivity appends a checklist item and returns its id.
func AddDailyActivity(name, category string) (string, Mutation) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", reject("add daily activity", ErrBlankName)
	}
	id := uuid.NewString()
	return id, func(s State, _ time.Time) (State, error) {
		item := DailyActivityItem{ID: id, Name: trimmed, Category: category}
		s.DailyActivityList = append(slices.Clone(s.DailyActivityList), item)
		return s, nil
	}
}

func dailyIndex(s State, id string) (int, error) {
	i := slices.IndexFunc(s.DailyActivityList, func(it DailyActivityItem) bool { return it.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("daily activity %q: %w", id, ErrNotFound)
	}
	return i, nil
}

// RemoveDailyActivity drops a checklist item.
func RemoveDailyActivity(id string) Mutation {
	return func(s State, _ time.Time) (State, error) {
		i, err := dailyIndex(s, id)
		if err != nil {
			return s, fmt.Errorf("remove daily activity: %w", err)
		}
		s.DailyActivityList = removeAt(s.DailyActivityList, i)
		if s.DailyCompletion.Done[id] {
			done := maps.Clone(s.DailyCompletion.Done)
			delete(done, id)
			s.DailyCompletion.Done = done
		}
		return s, nil
	}
}

// RenameDailyActivity renames a checklist item.
func RenameDailyActivity(id, name string) Mutation {
	return func(s State, _ time.Time) (State, error) {
		i, err := dailyIndex(s, id)
		if err != nil {
			return s, fmt.Errorf("rename daily activity: %w", err)
		}
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return s, fmt.Errorf("rename daily activity: %w", ErrBlankName)
		}
		s.DailyActivityList = slices.Clone(s.DailyActivityList)
		s.DailyActivityList[i].Name = trimmed
		return s, nil
	}
}

// ToggleDailyActivity flips today's completion mark of a checklist item. Marks from an
// earlier day are discarded first.
func ToggleDailyActivity(id string) Mutation {
	return func(s State, now time.Time) (State, error) {
		if _, err := dailyIndex(s, id); err != nil {
			return s, fmt.Errorf("toggle daily activity: %w", err)
		}
		today := DayString(now)
		done := map[string]bool{}
		if s.DailyCompletion.Date == today {
			maps.Copy(done, s.DailyCompletion.Done)
		}
		if done[id] {
			delete(done, id)
		} else {
			done[id] = true
		}
		s.DailyCompletion = DailyCompletion{Date: today, Done: done}
		return s, nil
	}
}

// CompletedToday returns the ids ticked today.
func CompletedToday(s State, now time.Time) map[string]bool {
	if s.DailyCompletion.Date != DayString(now) {
		return map[string]bool{}
	}
	return maps.Clone(s.DailyCompletion.Done)
}
