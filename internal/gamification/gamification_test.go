package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/lifetrack/internal/domain"
)

var now = time.Date(2025, time.October, 19, 18, 0, 0, 0, time.UTC)

func run(t *testing.T, s State, m Mutation) State {
	t.Helper()
	next, err := m(s, now)
	require.NoError(t, err)
	return next
}

func TestLevelCurve(t *testing.T) {
	require.Equal(t, 100, XPForLevel(1))
	require.Equal(t, 150, XPForLevel(2))
	require.Equal(t, 225, XPForLevel(3))
	require.Equal(t, 337, XPForLevel(4))

	require.Equal(t, 1, LevelForXP(0))
	require.Equal(t, 1, LevelForXP(99))
	require.Equal(t, 2, LevelForXP(100))
	require.Equal(t, 2, LevelForXP(249))
	require.Equal(t, 3, LevelForXP(250))
}

func TestAddXPLevelsUpAndQueuesRewards(t *testing.T) {
	s := NewState()
	s = run(t, s, AddXP("boxing", 60))
	require.Equal(t, 1, s.CurrentLevel)
	require.Equal(t, 40, XPToNextLevel(s))
	require.Len(t, s.PendingRewards, 1)

	s = run(t, s, AddXP("gym", 60))
	require.Equal(t, 2, s.CurrentLevel)
	require.Equal(t, 130, XPToNextLevel(s))
	require.Equal(t, 150, XPForCurrentLevel(s))
	require.Len(t, s.PendingRewards, 3)
	require.Equal(t, RewardLevelUp, s.PendingRewards[2].Type)
	require.Equal(t, 2, *s.PendingRewards[2].Value)

	_, err := AddXP("gym", 0)(s, now)
	require.ErrorIs(t, err, domain.ErrRejected)
}

func TestRecentGainsCapped(t *testing.T) {
	s := NewState()
	for i := 1; i <= 12; i++ {
		s = run(t, s, AddXP("oud", i))
	}
	require.Len(t, s.RecentXPGains, 10)
	require.Equal(t, 12, s.RecentXPGains[0].XP)
	require.Equal(t, 3, s.RecentXPGains[9].XP)
}

func TestUnlockAchievementOnce(t *testing.T) {
	s := NewState()
	s = run(t, s, UnlockAchievement("century_club"))
	require.Equal(t, 100, s.CurrentXP)
	require.Equal(t, 2, s.CurrentLevel)
	require.Equal(t, 1, UnlockedCount(s))
	require.Equal(t, []string{"century_club"}, s.UnlockedAchievements)
	require.Equal(t, "Achievement: Century Club", s.RecentXPGains[0].Activity)

	_, err := UnlockAchievement("century_club")(s, now)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	_, err = UnlockAchievement("nope")(s, now)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChallenges(t *testing.T) {
	s := NewState()
	s = run(t, s, UpdateChallengeProgress("daily_boxing_1", 90))
	require.Equal(t, 45, s.Challenges[1].Progress)

	s = run(t, s, CompleteChallenge("weekly_consistency"))
	require.True(t, s.Challenges[3].IsCompleted)
	require.Equal(t, 5, s.Challenges[3].Progress)
	require.Equal(t, 100, s.CurrentXP)

	_, err := CompleteChallenge("weekly_consistency")(s, now)
	require.ErrorIs(t, err, domain.ErrRejected)
}

func TestUpdateStreak(t *testing.T) {
	s := NewState()
	s = run(t, s, UpdateStreak())
	require.Equal(t, 1, s.DailyStreak)

	_, err := UpdateStreak()(s, now)
	require.ErrorIs(t, err, domain.ErrRejected)

	next, err := UpdateStreak()(s, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, next.DailyStreak)

	gap, err := UpdateStreak()(next, now.Add(72*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, gap.DailyStreak)
}

func TestInitializeDefaultDataSeedsLeaderboard(t *testing.T) {
	s := NewState()
	s = run(t, s, AddXP("spanish", 300))
	s = run(t, s, InitializeDefaultData())

	require.Len(t, s.Leaderboard, 4)
	require.True(t, s.Leaderboard[0].IsCurrentUser)
	require.Equal(t, 300, s.Leaderboard[0].TotalXP)
	require.Equal(t, "Alex Johnson", s.Leaderboard[1].Name)
}

func TestRewardsQueue(t *testing.T) {
	s := NewState()
	s = run(t, s, AddReward(Reward{Type: RewardStreak, Title: "On fire"}))
	require.Len(t, s.PendingRewards, 1)
	id := s.PendingRewards[0].ID
	require.NotEmpty(t, id)

	s = run(t, s, RemoveReward(id))
	require.Empty(t, s.PendingRewards)

	s = run(t, s, AddReward(Reward{Type: RewardXP, Title: "x"}))
	s = run(t, s, ClearAllRewards())
	require.Empty(t, s.PendingRewards)
}
