package gamification

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/lifetrack/internal/domain"
)

// Mutation computes the next gamification state. Errors matching domain.ErrRejected mean
// the input was declined and nothing changed.
type Mutation func(s State, now time.Time) (State, error)

const recentGainLimit = 10

func (s *State) credit(activity string, xp int, now time.Time) (leveledUp bool) {
	s.CurrentXP += xp
	level := LevelForXP(s.CurrentXP)
	leveledUp = level > s.CurrentLevel
	s.CurrentLevel = level
	gains := make([]XPGain, 0, recentGainLimit)
	gains = append(gains, XPGain{Activity: activity, XP: xp, Timestamp: now})
	for _, g := range s.RecentXPGains {
		if len(gains) == recentGainLimit {
			break
		}
		gains = append(gains, g)
	}
	s.RecentXPGains = gains
	return leveledUp
}

func (s *State) reward(r Reward) {
	s.PendingRewards = append(slices.Clone(s.PendingRewards), r)
}

// AddXP credits experience for an activity, queueing an XP reward and, when the level
// rises, a level-up reward.
func AddXP(activity string, amount int) Mutation {
	return func(s State, now time.Time) (State, error) {
		if amount <= 0 {
			return s, fmt.Errorf("add xp %d: %w", amount, domain.ErrInvalidValue)
		}
		leveled := s.credit(activity, amount, now)
		ms := now.UnixMilli()
		s.reward(Reward{
			ID:          fmt.Sprintf("xp_%d", ms),
			Type:        RewardXP,
			Title:       "XP Gained!",
			Description: fmt.Sprintf("Great job on %s!", activity),
			Value:       intPtr(amount),
			Timestamp:   now,
		})
		if leveled {
			s.reward(Reward{
				ID:          fmt.Sprintf("level_%d", ms),
				Type:        RewardLevelUp,
				Title:       "Level Up!",
				Description: fmt.Sprintf("Congratulations! You've reached Level %d!", s.CurrentLevel),
				Value:       intPtr(s.CurrentLevel),
				Rarity:      Epic,
				Timestamp:   now,
			})
		}
		return s, nil
	}
}

// UnlockAchievement marks an achievement unlocked once and credits its points.
func UnlockAchievement(id string) Mutation {
	return func(s State, now time.Time) (State, error) {
		if slices.Contains(s.UnlockedAchievements, id) {
			return s, fmt.Errorf("unlock achievement %q: %w", id, domain.ErrAlreadyExists)
		}
		i := slices.IndexFunc(s.Achievements, func(a Achievement) bool { return a.ID == id })
		if i < 0 {
			return s, fmt.Errorf("unlock achievement %q: %w", id, domain.ErrNotFound)
		}
		s.Achievements = slices.Clone(s.Achievements)
		a := s.Achievements[i]
		a.IsUnlocked = true
		a.UnlockedAt = &now
		s.Achievements[i] = a
		s.UnlockedAchievements = append(slices.Clone(s.UnlockedAchievements), id)

		s.credit("Achievement: "+a.Title, a.Points, now)
		s.reward(Reward{
			ID:          fmt.Sprintf("achievement_%d", now.UnixMilli()),
			Type:        RewardAchievement,
			Title:       "Achievement Unlocked!",
			Description: a.Title,
			Value:       intPtr(a.Points),
			Rarity:      a.Rarity,
			Timestamp:   now,
		})
		return s, nil
	}
}

func challengeIndex(s State, id string) (int, error) {
	i := slices.IndexFunc(s.Challenges, func(c Challenge) bool { return c.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("challenge %q: %w", id, domain.ErrNotFound)
	}
	return i, nil
}

// UpdateChallengeProgress sets a challenge's progress, capped at its maximum.
func UpdateChallengeProgress(id string, progress int) Mutation {
	return func(s State, _ time.Time) (State, error) {
		i, err := challengeIndex(s, id)
		if err != nil {
			return s, fmt.Errorf("update challenge: %w", err)
		}
		s.Challenges = slices.Clone(s.Challenges)
		s.Challenges[i].Progress = min(progress, s.Challenges[i].MaxProgress)
		return s, nil
	}
}

// CompleteChallenge finishes a challenge once and credits its reward XP.
func CompleteChallenge(id string) Mutation {
	return func(s State, now time.Time) (State, error) {
		i, err := challengeIndex(s, id)
		if err != nil {
			return s, fmt.Errorf("complete challenge: %w", err)
		}
		if s.Challenges[i].IsCompleted {
			return s, fmt.Errorf("complete challenge %q: %w", id, domain.ErrAlreadyExists)
		}
		s.Challenges = slices.Clone(s.Challenges)
		c := &s.Challenges[i]
		c.IsCompleted = true
		c.Progress = c.MaxProgress
		s.credit("Challenge: "+c.Title, c.XPReward, now)
		return s, nil
	}
}

// UpdateStreak records activity today: a visit yesterday continues the streak, any longer
// gap restarts it at one.
func UpdateStreak() Mutation {
	return func(s State, now time.Time) (State, error) {
		today := domain.DayString(now)
		if s.LastActivityDate == today {
			return s, fmt.Errorf("update streak: already counted today: %w", domain.ErrAlreadyExists)
		}
		if s.LastActivityDate == domain.DayString(now.Add(-24*time.Hour)) {
			s.DailyStreak++
		} else {
			s.DailyStreak = 1
		}
		s.LastActivityDate = today
		return s, nil
	}
}

// InitializeDefaultData restores the built-in achievements and challenges and seeds the
// leaderboard around the current user.
func InitializeDefaultData() Mutation {
	return func(s State, _ time.Time) (State, error) {
		s.Achievements = DefaultAchievements()
		s.Challenges = DefaultChallenges()
		board := make([]LeaderboardEntry, 0, len(rivals)+1)
		board = append(board, LeaderboardEntry{
			ID:            s.CurrentUserID,
			Name:          "You",
			Level:         s.CurrentLevel,
			TotalXP:       s.CurrentXP,
			WeeklyXP:      150,
			Rank:          1,
			Achievements:  len(s.UnlockedAchievements),
			IsCurrentUser: true,
		})
		s.Leaderboard = append(board, rivals...)
		return s, nil
	}
}

// AddReward queues a notification. ID and Timestamp are assigned here.
func AddReward(r Reward) Mutation {
	return func(s State, now time.Time) (State, error) {
		if strings.TrimSpace(r.Title) == "" {
			return s, fmt.Errorf("add reward: %w", domain.ErrBlankName)
		}
		r.ID = fmt.Sprintf("reward_%d_%s", now.UnixMilli(), uuid.NewString())
		r.Timestamp = now
		s.reward(r)
		return s, nil
	}
}

// RemoveReward drops a queued notification.
func RemoveReward(id string) Mutation {
	return func(s State, _ time.Time) (State, error) {
		i := slices.IndexFunc(s.PendingRewards, func(r Reward) bool { return r.ID == id })
		if i < 0 {
			return s, fmt.Errorf("remove reward %q: %w", id, domain.ErrNotFound)
		}
		s.PendingRewards = slices.Delete(slices.Clone(s.PendingRewards), i, i+1)
		return s, nil
	}
}

// ClearAllRewards empties the notification queue.
func ClearAllRewards() Mutation {
	return func(s State, _ time.Time) (State, error) {
		s.PendingRewards = []Reward{}
		return s, nil
	}
}
