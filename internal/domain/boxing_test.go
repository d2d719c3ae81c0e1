package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTapeEntryEditDeltas(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, AddBoxingTapeEntry(2, 0, 1, ""))
	s = apply(t, s, day1, AddBoxingTapeEntry(1, 3, 0, "week 2"))

	require.Equal(t, 3.0, s.Boxing.BoxingTapeHours)
	require.Equal(t, 3.0, s.Boxing.KickboxingTapeHours)
	require.Equal(t, 1.0, s.Boxing.MMATapeHours)
	require.Equal(t, "9/26", s.Boxing.BoxingTapeTrend[0].Date)
	require.Equal(t, "week 2", s.Boxing.BoxingTapeTrend[1].Date)

	s = apply(t, s, day1, UpdateBoxingTapeAt(0, TapeEdit{Boxing: ptr(5.0), MMA: ptr(-1.0)}))
	require.Equal(t, 6.0, s.Boxing.BoxingTapeHours)
	require.Equal(t, 1.0, s.Boxing.MMATapeHours)

	s = apply(t, s, day1, DeleteBoxingTapeAt(1))
	require.Len(t, s.Boxing.BoxingTapeTrend, 1)
	require.Equal(t, 5.0, s.Boxing.BoxingTapeHours)
	require.Equal(t, 0.0, s.Boxing.KickboxingTapeHours)

	_, err := DeleteBoxingTapeAt(1)(s, day1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestTapeEntryRejectsEmpty(t *testing.T) {
	s := NewState(day1)
	_, err := AddBoxingTapeEntry(0, -2, 0, "")(s, day1)
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestTrendTimestampsAdvance(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, AddBoxingTapeEntry(1, 0, 0, ""))
	s = apply(t, s, day1, AddBoxingTapeEntry(1, 0, 0, ""))
	s = apply(t, s, day1, AddBoxingTapeEntry(1, 0, 0, ""))

	trend := s.Boxing.BoxingTapeTrend
	for i := 1; i < len(trend); i++ {
		require.Equal(t, *trend[i-1].TS+weekStep.Milliseconds(), *trend[i].TS)
	}
	require.Equal(t, "10/3", trend[1].Date)
}

func TestTrendTimestampFromLabel(t *testing.T) {
	s := NewState(day1)
	s.Gym.WeightTrend = []WeightPoint{{Date: "2025-01-10", Weight: 80}}

	s = apply(t, s, day1, AddGymWeight(79.456, ""))
	last := s.Gym.WeightTrend[1]
	require.Equal(t, time.Date(2025, time.January, 17, 0, 0, 0, 0, time.UTC).UnixMilli(), *last.TS)
	require.Equal(t, "1/17", last.Date)
	require.Equal(t, 79.46, last.Weight)

	s.Gym.WeightTrend = []WeightPoint{{Date: "Week 1", Weight: 80}}
	s = apply(t, s, day1, AddGymWeight(80, ""))
	require.Equal(t, day1.UnixMilli(), *s.Gym.WeightTrend[1].TS)
}

func TestFitnessScoresRecomputeAggregates(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, AddFitnessScore(300.4, ""))
	s = apply(t, s, day1, AddFitnessScore(250, ""))

	require.Equal(t, 300.0, s.Boxing.FitnessTestHighest)
	require.Equal(t, 250.0, s.Boxing.FitnessTestThisMonth)
	require.Equal(t, "Sep", s.Boxing.FitnessTestTrend[0].Date)
	require.Equal(t, "Oct", s.Boxing.FitnessTestTrend[1].Date)

	s = apply(t, s, day1, UpdateFitnessScoreAt(0, ptr(200.0), ""))
	require.Equal(t, 250.0, s.Boxing.FitnessTestHighest)

	s = apply(t, s, day1, DeleteFitnessScoreAt(1))
	require.Equal(t, 200.0, s.Boxing.FitnessTestHighest)
	require.Equal(t, 200.0, s.Boxing.FitnessTestThisMonth)

	s = apply(t, s, day1, DeleteFitnessScoreAt(0))
	require.Equal(t, 0.0, s.Boxing.FitnessTestHighest)
	require.Equal(t, 0.0, s.Boxing.FitnessTestThisMonth)

	_, err := AddFitnessScore(0, "")(s, day1)
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestRecordFight(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, RecordBoxingFight(Win))
	s = apply(t, s, day1, RecordBoxingFight(Draw))

	require.Equal(t, 2, s.Boxing.TotalFights)
	require.Equal(t, 1, s.Boxing.Wins)
	require.Equal(t, 1, s.Boxing.Draws)

	_, err := RecordBoxingFight("forfeit")(s, day1)
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestResetTape(t *testing.T) {
	s := NewState(day1)
	s = apply(t, s, day1, AddTapeHours(TapeMMA, 2))
	s = apply(t, s, day1, AddBoxingTapeEntry(1, 1, 1, ""))
	s = apply(t, s, day1, ResetBoxingTape())

	require.Zero(t, s.Boxing.MMATapeHours)
	require.Empty(t, s.Boxing.BoxingTapeTrend)
}
