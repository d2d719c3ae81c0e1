package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

func liftNames(r *ActivityRecord) []string {
	if len(r.PowerLiftNames) == 0 {
		return DefaultPowerLiftNames
	}
	return r.PowerLiftNames
}

func liftWeights(r *ActivityRecord) []float64 {
	if len(r.PowerLiftWeights) == 0 {
		return DefaultPowerLiftWeights
	}
	return r.PowerLiftWeights
}

func renameLift(index int, name string) func(r *ActivityRecord, _ time.Time) error {
	return func(r *ActivityRecord, _ time.Time) error {
		names := liftNames(r)
		if err := checkIndex(index, min(len(names), MaxPowerLifts)); err != nil {
			return err
		}
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return ErrBlankName
		}
		next := slices.Clone(names)
		next[index] = trimmed
		r.PowerLiftNames = next
		return nil
	}
}

func reweighLift(index int, weight float64) func(r *ActivityRecord, _ time.Time) error {
	return func(r *ActivityRecord, _ time.Time) error {
		weights := fitWeights(slices.Clone(liftWeights(r)), len(liftNames(r)))
		if err := checkIndex(index, len(weights)); err != nil {
			return err
		}
		if !positive(weight) {
			return fmt.Errorf("weight %v: %w", weight, ErrInvalidValue)
		}
		weights[index] = round2(weight)
		r.PowerLiftWeights = weights
		return nil
	}
}

// UpdateGymPowerLiftName renames the headline lift at index.
func UpdateGymPowerLiftName(index int, name string) Mutation {
	return onRecord("update lift name", Gym, renameLift(index, name))
}

// UpdateGymPowerLiftWeight sets the best weight of the lift at index.
func UpdateGymPowerLiftWeight(index int, weight float64) Mutation {
	return onRecord("update lift weight", Gym, reweighLift(index, weight))
}

// UpdateCustomPowerLiftName renames a lift of a custom gym-template activity.
func UpdateCustomPowerLiftName(slug string, index int, name string) Mutation {
	return onCustom("update custom lift name", slug, renameLift(index, name))
}

// UpdateCustomPowerLiftWeight sets a lift weight of a custom gym-template activity.
func UpdateCustomPowerLiftWeight(slug string, index int, weight float64) Mutation {
	return onCustom("update custom lift weight", slug, reweighLift(index, weight))
}

// AddGymPowerLift appends a headline lift, up to MaxPowerLifts.
func AddGymPowerLift(name string, weight float64) Mutation {
	return onRecord("add lift", Gym, func(r *ActivityRecord, _ time.Time) error {
		names := liftNames(r)
		if len(names) >= MaxPowerLifts {
			return fmt.Errorf("%d lifts: %w", len(names), ErrLimitReached)
		}
		weights := fitWeights(liftWeights(r), len(names))
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			trimmed = "New Lift"
		}
		if !finite(weight) || weight < 0 {
			weight = 0
		}
		r.PowerLiftNames = append(slices.Clone(names), trimmed)
		r.PowerLiftWeights = append(slices.Clone(weights), round2(weight))
		return nil
	})
}

// RemoveGymPowerLift drops the lift at index, keeping at least MinPowerLifts.
func RemoveGymPowerLift(index int) Mutation {
	return onRecord("remove lift", Gym, func(r *ActivityRecord, _ time.Time) error {
		names := liftNames(r)
		if len(names) <= MinPowerLifts {
			return fmt.Errorf("%d lifts: %w", len(names), ErrLimitReached)
		}
		if err := checkIndex(index, len(names)); err != nil {
			return err
		}
		r.PowerLiftNames = removeAt(names, index)
		r.PowerLiftWeights = removeAt(fitWeights(liftWeights(r), len(names)), index)
		return nil
	})
}

func appendWeight(weight float64, label string) func(r *ActivityRecord, now time.Time) error {
	return func(r *ActivityRecord, now time.Time) error {
		if !positive(weight) {
			return fmt.Errorf("weight %v: %w", weight, ErrInvalidValue)
		}
		trend := r.WeightTrend
		var ts int64
		if n := len(trend); n > 0 {
			ts = nextTimestamp(true, trend[n-1].TS, trend[n-1].Date, weekStep, now)
		} else {
			ts = nextTimestamp(false, nil, "", weekStep, now)
		}
		point := WeightPoint{
			Date:   pickLabel(label, func() string { return weekLabel(ts, now.Location()) }),
			Weight: round2(weight),
			TS:     ptr(ts),
		}
		r.WeightTrend = append(slices.Clone(trend), point)
		return nil
	}
}

// AddGymWeight appends a weekly body-weight measurement.
func AddGymWeight(weight float64, label string) Mutation {
	return onRecord("add weight", Gym, appendWeight(weight, label))
}

// AddCustomWeight is AddGymWeight for a custom activity.
func AddCustomWeight(slug string, weight float64, label string) Mutation {
	return onCustom("add custom weight", slug, appendWeight(weight, label))
}

// UpdateGymWeightAt edits the measurement at index. A nil or non-positive weight keeps the
// current one.
func UpdateGymWeightAt(index int, weight *float64, label string) Mutation {
	return onRecord("update weight", Gym, func(r *ActivityRecord, _ time.Time) error {
		if err := checkIndex(index, len(r.WeightTrend)); err != nil {
			return err
		}
		trend := slices.Clone(r.WeightTrend)
		cur := trend[index]
		if weight != nil && positive(*weight) {
			cur.Weight = round2(*weight)
		}
		cur.Date = pickLabel(label, func() string { return cur.Date })
		trend[index] = cur
		r.WeightTrend = trend
		return nil
	})
}

// DeleteGymWeightAt drops the measurement at index.
func DeleteGymWeightAt(index int) Mutation {
	return onRecord("delete weight", Gym, func(r *ActivityRecord, _ time.Time) error {
		if err := checkIndex(index, len(r.WeightTrend)); err != nil {
			return err
		}
		r.WeightTrend = removeAt(r.WeightTrend, index)
		return nil
	})
}

// SetGymGoalWeight sets the target body weight.
func SetGymGoalWeight(weight float64) Mutation {
	return onRecord("set goal weight", Gym, func(r *ActivityRecord, _ time.Time) error {
		if !finite(weight) || weight < 0 {
			return fmt.Errorf("weight %v: %w", weight, ErrInvalidValue)
		}
		r.GoalWeight = round2(weight)
		return nil
	})
}

// AddGymExercise registers a catalog exercise and returns its generated id. A blank name
// yields "" and a rejecting mutation.
func AddGymExercise(name string, category ExerciseCategory) (string, Mutation) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", reject("add exercise", ErrBlankName)
	}
	id := exerciseID(trimmed)
	category = ParseCategory(string(category))
	return id, func(s State, _ time.Time) (State, error) {
		s.GymExerciseNames = cloneOrNew(s.GymExerciseNames)
		s.GymExerciseNames[id] = trimmed
		s.GymExerciseCategories = cloneOrNew(s.GymExerciseCategories)
		s.GymExerciseCategories[id] = category
		return s, nil
	}
}

// RemoveGymExercise forgets an exercise together with its logged sets.
func RemoveGymExercise(id string) Mutation {
	return func(s State, _ time.Time) (State, error) {
		_, named := s.GymExerciseNames[id]
		_, categorized := s.GymExerciseCategories[id]
		_, logged := s.GymExerciseProgress[id]
		if id == "" || !(named || categorized || logged) {
			return s, fmt.Errorf("remove exercise %q: %w", id, ErrNotFound)
		}
		s.GymExerciseNames = maps.Clone(s.GymExerciseNames)
		delete(s.GymExerciseNames, id)
		s.GymExerciseCategories = maps.Clone(s.GymExerciseCategories)
		delete(s.GymExerciseCategories, id)
		s.GymExerciseProgress = maps.Clone(s.GymExerciseProgress)
		delete(s.GymExerciseProgress, id)
		return s, nil
	}
}

// UpdateGymExerciseName sets the display name of an exercise.
func UpdateGymExerciseName(id, name string) Mutation {
	return func(s State, _ time.Time) (State, error) {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return s, fmt.Errorf("rename exercise %q: %w", id, ErrBlankName)
		}
		s.GymExerciseNames = cloneOrNew(s.GymExerciseNames)
		s.GymExerciseNames[id] = trimmed
		return s, nil
	}
}

// UpdateGymExerciseCategory moves an exercise to another category.
func UpdateGymExerciseCategory(id string, category ExerciseCategory) Mutation {
	return func(s State, _ time.Time) (State, error) {
		if id == "" {
			return s, fmt.Errorf("recategorize exercise: %w", ErrNotFound)
		}
		s.GymExerciseCategories = cloneOrNew(s.GymExerciseCategories)
		s.GymExerciseCategories[id] = ParseCategory(string(category))
		return s, nil
	}
}

func appendSet(progress map[string][]ExercisePoint, id string, weight float64, reps *int, label string, now time.Time) (map[string][]ExercisePoint, error) {
	if id == "" {
		return nil, fmt.Errorf("exercise id: %w", ErrNotFound)
	}
	if !positive(weight) {
		return nil, fmt.Errorf("weight %v: %w", weight, ErrInvalidValue)
	}
	series := progress[id]
	var ts int64
	if n := len(series); n > 0 {
		ts = nextTimestamp(true, series[n-1].TS, series[n-1].Date, weekStep, now)
	} else {
		ts = nextTimestamp(false, nil, "", weekStep, now)
	}
	point := ExercisePoint{
		Date:   pickLabel(label, func() string { return weekLabel(ts, now.Location()) }),
		Weight: round2(weight),
		Reps:   reps,
		TS:     ptr(ts),
	}
	out := cloneOrNew(progress)
	out[id] = append(slices.Clone(series), point)
	return out, nil
}

// AddGymExerciseWeight logs a working set for an exercise.
func AddGymExerciseWeight(id string, weight float64, reps *int, label string) Mutation {
	return func(s State, now time.Time) (State, error) {
		progress, err := appendSet(s.GymExerciseProgress, id, weight, reps, label, now)
		if err != nil {
			return s, fmt.Errorf("add exercise set: %w", err)
		}
		s.GymExerciseProgress = progress
		return s, nil
	}
}

// UpdateCustomExerciseName names an exercise inside a custom gym-template activity.
func UpdateCustomExerciseName(slug, id, name string) Mutation {
	return onCustom("rename custom exercise", slug, func(r *ActivityRecord, _ time.Time) error {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return ErrBlankName
		}
		r.GymExerciseNames = cloneOrNew(r.GymExerciseNames)
		r.GymExerciseNames[id] = trimmed
		return nil
	})
}

// AddCustomExerciseWeight logs a working set inside a custom gym-template activity.
func AddCustomExerciseWeight(slug, id string, weight float64, reps *int, label string) Mutation {
	return onCustom("add custom exercise set", slug, func(r *ActivityRecord, now time.Time) error {
		progress, err := appendSet(r.GymExerciseProgress, id, weight, reps, label, now)
		if err != nil {
			return err
		}
		r.GymExerciseProgress = progress
		return nil
	})
}

func cloneOrNew[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return maps.Clone(m)
}
