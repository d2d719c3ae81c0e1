package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2025, time.September, 26, 9, 0, 0, 0, time.UTC)

func apply(t *testing.T, s State, now time.Time, m Mutation) State {
	t.Helper()
	next, err := m(s, now)
	require.NoError(t, err)
	return next
}

func TestAddHoursOnFreshStore(t *testing.T) {
	s := NewState(day1)

	s = apply(t, s, day1, AddHours(Boxing, 1.5))

	require.Equal(t, 1.5, s.Boxing.TotalHours)
	require.Equal(t, 1, s.Boxing.ThisWeekSessions)
	require.Equal(t, 1, s.Boxing.CurrentStreak)
	require.NotNil(t, s.Boxing.LastSession)
	require.Equal(t, "Fri Sep 26 2025", *s.Boxing.LastSession)
}

func TestAddHoursStreakOncePerDay(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, AddHours(Gym, 1))
	s = apply(t, s, day1.Add(3*time.Hour), AddHours(Gym, 0.333))

	require.Equal(t, 1.33, s.Gym.TotalHours)
	require.Equal(t, 2, s.Gym.ThisWeekSessions)
	require.Equal(t, 1, s.Gym.CurrentStreak)

	s = apply(t, s, day1.Add(24*time.Hour), AddHours(Gym, 1))
	require.Equal(t, 2, s.Gym.CurrentStreak)
}

func TestAddHoursRejectsInvalid(t *testing.T) {
	s := NewState(day1)
	for _, h := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		next, err := AddHours(Oud, h)(s, day1)
		require.ErrorIs(t, err, ErrInvalidValue)
		require.ErrorIs(t, err, ErrRejected)
		require.Equal(t, 0.0, next.Oud.TotalHours)
	}

	_, err := AddHours("piano", 1)(s, day1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTodayMinutesFreshAndStale(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, AddTodayMinutes(Spanish, 10))
	s = apply(t, s, day1, AddTodayMinutes(Spanish, 5))
	require.Equal(t, 15.0, TodayMinutes(s.Spanish, day1))

	tomorrow := day1.Add(24 * time.Hour)
	require.Equal(t, 0.0, TodayMinutes(s.Spanish, tomorrow))

	s = apply(t, s, tomorrow, AddTodayMinutes(Spanish, 7))
	require.Equal(t, 7.0, s.Spanish.TodayMinutes)
	require.Equal(t, DayString(tomorrow), s.Spanish.TodayDate)
}

func TestSetDailyGoalFallsBackToDefault(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, SetDailyGoal(Violin, 45))
	require.Equal(t, 45.0, s.Violin.DailyGoalMinutes)

	s = apply(t, s, day1, SetDailyGoal(Violin, -3))
	require.Equal(t, float64(DefaultDailyGoalMinutes), s.Violin.DailyGoalMinutes)
}

func TestHideRestoreIsIdentity(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, AddHours(Violin, 2))

	hidden := apply(t, s, day1, HideActivity(Violin))
	require.False(t, hidden.Visible(Violin))
	require.Equal(t, s.Violin, hidden.Violin)

	restored := apply(t, hidden, day1, RestoreActivity(Violin))
	require.True(t, restored.Visible(Violin))
	require.Equal(t, s, restored)

	_, err := RestoreActivity(Violin)(restored, day1)
	require.ErrorIs(t, err, ErrRejected)
}

func TestMutationsDoNotAliasInput(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, AddGymWeight(80, ""))
	before := len(s.Gym.WeightTrend)

	_ = apply(t, s, day1, AddGymWeight(81, ""))
	_ = apply(t, s, day1, HideActivity(Boxing))

	require.Len(t, s.Gym.WeightTrend, before)
	require.Empty(t, s.HiddenActivities)
}

func TestSetBooksAndConcerts(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, SetBooksRead(German, 3.8))
	require.Equal(t, 3, s.German.BooksRead)

	s = apply(t, s, day1, SetBooksRead(German, -2))
	require.Equal(t, 0, s.German.BooksRead)

	_, err := SetBooksRead(Gym, 1)(s, day1)
	require.ErrorIs(t, err, ErrNotFound)

	s = apply(t, s, day1, AddConcert())
	s = apply(t, s, day1, SetTotalConcerts(Violin, 4.6))
	require.Equal(t, 1, s.Oud.TotalConcerts)
	require.Equal(t, 5, s.Violin.TotalConcerts)
}

func TestChainStopsOnRejection(t *testing.T) {
	s := NewState(day1)
	_, err := Chain(AddHours(Boxing, 1), AddHours(Boxing, -1))(s, day1)
	require.ErrorIs(t, err, ErrInvalidValue)

	s = apply(t, s, day1, Chain(AddHours(Boxing, 1), CompleteOnboarding()))
	require.True(t, s.HasCompletedOnboarding)
	require.Equal(t, 1.0, s.Boxing.TotalHours)
}
