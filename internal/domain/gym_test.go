package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddGymExercise(t *testing.T) {
	s := NewState(day1)

	id, m := AddGymExercise("  Cable Row!! ", CategoryPull)
	require.True(t, strings.HasPrefix(id, "cable-row-"))
	require.Len(t, id, len("cable-row-")+suffixLength)

	s = apply(t, s, day1, m)
	require.Equal(t, "Cable Row!!", s.GymExerciseNames[id])
	require.Equal(t, CategoryPull, s.GymExerciseCategories[id])
	_, logged := s.GymExerciseProgress[id]
	require.False(t, logged)

	blank, m := AddGymExercise("   ", CategoryPush)
	require.Empty(t, blank)
	_, err := m(s, day1)
	require.ErrorIs(t, err, ErrBlankName)

	odd, _ := AddGymExercise("???", "cardio")
	require.True(t, strings.HasPrefix(odd, "exercise-"))
}

func TestExerciseProgressAndRemoval(t *testing.T) {
	s := NewState(day1)
	id, m := AddGymExercise("Hack Squat", CategoryLegs)
	s = apply(t, s, day1, m)

	reps := 8
	s = apply(t, s, day1, AddGymExerciseWeight(id, 70, &reps, ""))
	s = apply(t, s, day1, AddGymExerciseWeight(id, 72.5, nil, ""))
	require.Len(t, s.GymExerciseProgress[id], 2)
	require.Equal(t, 8, *s.GymExerciseProgress[id][0].Reps)
	require.Nil(t, s.GymExerciseProgress[id][1].Reps)

	_, err := AddGymExerciseWeight(id, 0, nil, "")(s, day1)
	require.ErrorIs(t, err, ErrInvalidValue)

	s = apply(t, s, day1, RemoveGymExercise(id))
	require.NotContains(t, s.GymExerciseNames, id)
	require.NotContains(t, s.GymExerciseCategories, id)
	require.NotContains(t, s.GymExerciseProgress, id)

	_, err = RemoveGymExercise(id)(s, day1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPowerLiftBounds(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, AddGymPowerLift("Deadlift", 140))
	s = apply(t, s, day1, AddGymPowerLift("", 0))
	require.Equal(t, []string{"Squats", "Bench Press", "Rows / Lat Pulldowns", "Hip Thrusts", "Deadlift", "New Lift"}, s.Gym.PowerLiftNames)
	require.Equal(t, []float64{0, 0, 0, 0, 140, 0}, s.Gym.PowerLiftWeights)

	_, err := AddGymPowerLift("OHP", 40)(s, day1)
	require.ErrorIs(t, err, ErrLimitReached)

	s = apply(t, s, day1, RemoveGymPowerLift(5))
	s = apply(t, s, day1, RemoveGymPowerLift(4))
	s = apply(t, s, day1, RemoveGymPowerLift(0))
	require.Len(t, s.Gym.PowerLiftNames, MinPowerLifts)
	require.Len(t, s.Gym.PowerLiftWeights, MinPowerLifts)

	_, err = RemoveGymPowerLift(0)(s, day1)
	require.ErrorIs(t, err, ErrLimitReached)
}

func TestPowerLiftEdits(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, UpdateGymPowerLiftName(1, " Incline Bench "))
	s = apply(t, s, day1, UpdateGymPowerLiftWeight(1, 62.555))
	require.Equal(t, "Incline Bench", s.Gym.PowerLiftNames[1])
	require.Equal(t, 62.56, s.Gym.PowerLiftWeights[1])

	_, err := UpdateGymPowerLiftName(4, "x")(s, day1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = UpdateGymPowerLiftName(0, "  ")(s, day1)
	require.ErrorIs(t, err, ErrBlankName)
	_, err = UpdateGymPowerLiftWeight(0, -5)(s, day1)
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestWeightTrendEdits(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, AddGymWeight(80, ""))
	s = apply(t, s, day1, AddGymWeight(81, ""))

	s = apply(t, s, day1, UpdateGymWeightAt(0, ptr(79.5), "start"))
	require.Equal(t, 79.5, s.Gym.WeightTrend[0].Weight)
	require.Equal(t, "start", s.Gym.WeightTrend[0].Date)

	s = apply(t, s, day1, UpdateGymWeightAt(1, ptr(-1.0), ""))
	require.Equal(t, 81.0, s.Gym.WeightTrend[1].Weight)

	s = apply(t, s, day1, DeleteGymWeightAt(0))
	require.Len(t, s.Gym.WeightTrend, 1)
	require.Equal(t, 81.0, s.Gym.WeightTrend[0].Weight)

	s = apply(t, s, day1, SetGymGoalWeight(75.555))
	require.Equal(t, 75.56, s.Gym.GoalWeight)
}
