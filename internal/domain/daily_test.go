package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDailyChecklist(t *testing.T) {
	s := NewState(day1)
	id, m := AddDailyActivity(" Stretch ", "Health")
	require.NotEmpty(t, id)
	s = apply(t, s, day1, m)
	require.Equal(t, DailyActivityItem{ID: id, Name: "Stretch", Category: "Health"}, s.DailyActivityList[0])

	s = apply(t, s, day1, RenameDailyActivity(id, "Mobility"))
	require.Equal(t, "Mobility", s.DailyActivityList[0].Name)

	s = apply(t, s, day1, ToggleDailyActivity(id))
	require.True(t, CompletedToday(s, day1)[id])

	tomorrow := day1.Add(24 * time.Hour)
	require.Empty(t, CompletedToday(s, tomorrow))

	s = apply(t, s, day1, ToggleDailyActivity(id))
	require.False(t, CompletedToday(s, day1)[id])

	s = apply(t, s, day1, RemoveDailyActivity(id))
	require.Empty(t, s.DailyActivityList)

	_, err := RenameDailyActivity(id, "x")(s, day1)
	require.ErrorIs(t, err, ErrNotFound)

	blank, m := AddDailyActivity(" ", "x")
	require.Empty(t, blank)
	_, err = m(s, day1)
	require.ErrorIs(t, err, ErrBlankName)
}

func TestUpdateDailyActivityName(t *testing.T) {
	s := NewState(day1)
	s.DailyActivityNames = []string{"Creatine"}
	s = apply(t, s, day1, UpdateDailyActivityName(0, "Fish oil"))
	require.Equal(t, []string{"Fish oil"}, s.DailyActivityNames)

	_, err := UpdateDailyActivityName(1, "x")(s, day1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestLoadTemplate(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, AddHours(Violin, 3))
	s = apply(t, s, day1, LoadTemplate(TemplateAthlete))

	require.True(t, s.HasCompletedOnboarding)
	require.Equal(t, 150.0, s.Boxing.TotalHours)
	require.Equal(t, []string{"Squats", "Bench Press", "Deadlift", "Overhead Press"}, s.Gym.PowerLiftNames)
	require.Len(t, s.Gym.WeightTrend, 1)
	require.Equal(t, 3.0, s.Violin.TotalHours)
	require.Len(t, s.DailyActivityList, 4)
	require.Equal(t, "1", s.DailyActivityList[0].ID)

	s = apply(t, s, day1, LoadTemplate(TemplateBlank))
	require.Zero(t, s.Boxing.TotalHours)
	require.Empty(t, s.DailyActivityList)

	_, err := LoadTemplate("pirate")(s, day1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNormalizeFillsDefaults(t *testing.T) {
	var s State
	s.CustomActivities = map[string]CustomActivity{"x": {Name: "X"}}
	s = Normalize(s)

	require.NotNil(t, s.HiddenActivities)
	require.NotNil(t, s.GymExerciseProgress)
	require.Equal(t, DefaultPowerLiftNames, s.Gym.PowerLiftNames)
	require.Len(t, s.Gym.PowerLiftWeights, 4)
	require.Equal(t, float64(DefaultDailyGoalMinutes), s.Boxing.DailyGoalMinutes)
	require.Equal(t, float64(DefaultDailyGoalMinutes), s.CustomActivities["x"].Data.DailyGoalMinutes)
	require.Equal(t, TemplateNone, s.CustomActivities["x"].Template)
}
