// Package gamification keeps XP, levels, achievements, challenges and rewards.
package gamification

import (
	"slices"
	"time"
)

// Version is the schema version of the persisted gamification blob.
const Version = 1

type Rarity string

const (
	Common    Rarity = "common"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
)

type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Rarity      Rarity     `json:"rarity"`
	Points      int        `json:"points"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
	IsUnlocked  bool       `json:"isUnlocked"`
	Progress    *int       `json:"progress,omitempty"`
	MaxProgress *int       `json:"maxProgress,omitempty"`
	Icon        string     `json:"icon,omitempty"`
}

type Challenge struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Difficulty   string     `json:"difficulty"`
	XPReward     int        `json:"xpReward"`
	Progress     int        `json:"progress"`
	MaxProgress  int        `json:"maxProgress"`
	IsCompleted  bool       `json:"isCompleted"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	Requirements []string   `json:"requirements"`
}

type XPGain struct {
	Activity  string    `json:"activity"`
	XP        int       `json:"xp"`
	Timestamp time.Time `json:"timestamp"`
}

type LeaderboardEntry struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar,omitempty"`
	Level         int    `json:"level"`
	TotalXP       int    `json:"totalXP"`
	WeeklyXP      int    `json:"weeklyXP"`
	Rank          int    `json:"rank"`
	Achievements  int    `json:"achievements"`
	IsCurrentUser bool   `json:"isCurrentUser,omitempty"`
}

type RewardType string

const (
	RewardXP          RewardType = "xp"
	RewardAchievement RewardType = "achievement"
	RewardLevelUp     RewardType = "level_up"
	RewardStreak      RewardType = "streak"
	RewardChallenge   RewardType = "challenge"
)

type Reward struct {
	ID          string     `json:"id"`
	Type        RewardType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Value       *int       `json:"value,omitempty"`
	Rarity      Rarity     `json:"rarity,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// State is the whole gamification store.
type State struct {
	CurrentXP            int                `json:"currentXP"`
	CurrentLevel         int                `json:"currentLevel"`
	RecentXPGains        []XPGain           `json:"recentXPGains"`
	Achievements         []Achievement      `json:"achievements"`
	UnlockedAchievements []string           `json:"unlockedAchievements"`
	Challenges           []Challenge        `json:"challenges"`
	DailyStreak          int                `json:"dailyStreak"`
	LastActivityDate     string             `json:"lastActivityDate"`
	Leaderboard          []LeaderboardEntry `json:"leaderboard"`
	CurrentUserID        string             `json:"currentUserId"`
	PendingRewards       []Reward           `json:"pendingRewards"`
}

func intPtr(v int) *int { return &v }

var defaultAchievements = []Achievement{
	{ID: "first_hour", Title: "First Steps", Description: "Complete your first hour of any activity", Category: "progress", Rarity: Common, Points: 10, Progress: intPtr(0), MaxProgress: intPtr(1), Icon: "award"},
	{ID: "century_club", Title: "Century Club", Description: "Reach 100 total hours across all activities", Category: "milestone", Rarity: Rare, Points: 100, Progress: intPtr(0), MaxProgress: intPtr(100), Icon: "trophy"},
	{ID: "language_level_5", Title: "Polyglot", Description: "Reach Level 5 in Language Learning", Category: "milestone", Rarity: Epic, Points: 250, Progress: intPtr(0), MaxProgress: intPtr(5), Icon: "star"},
	{ID: "boxing_level_4", Title: "Fighter", Description: "Reach Level 4 in Boxing", Category: "milestone", Rarity: Epic, Points: 200, Progress: intPtr(0), MaxProgress: intPtr(4), Icon: "zap"},
	{ID: "week_streak", Title: "Consistent Learner", Description: "Maintain a 7-day streak", Category: "streak", Rarity: Common, Points: 50, Progress: intPtr(0), MaxProgress: intPtr(7), Icon: "calendar"},
	{ID: "month_streak", Title: "Dedication Master", Description: "Maintain a 30-day streak", Category: "streak", Rarity: Rare, Points: 200, Progress: intPtr(0), MaxProgress: intPtr(30), Icon: "calendar"},
	{ID: "hundred_day_streak", Title: "Legendary Persistence", Description: "Maintain a 100-day streak", Category: "streak", Rarity: Legendary, Points: 1000, Progress: intPtr(0), MaxProgress: intPtr(100), Icon: "calendar"},
	{ID: "daily_champion", Title: "Daily Champion", Description: "Complete all daily challenges in one day", Category: "challenge", Rarity: Rare, Points: 75, Icon: "target"},
	{ID: "challenge_master", Title: "Challenge Master", Description: "Complete 50 challenges", Category: "challenge", Rarity: Epic, Points: 300, Progress: intPtr(0), MaxProgress: intPtr(50), Icon: "target"},
}

var defaultChallenges = []Challenge{
	{ID: "daily_language_1", Title: "Language Focus", Description: "Spend 30 minutes on language learning", Category: "daily", Difficulty: "easy", XPReward: 25, MaxProgress: 30, Requirements: []string{"Complete 30 minutes of language learning"}},
	{ID: "daily_boxing_1", Title: "Boxing Session", Description: "Complete a 45-minute boxing session", Category: "daily", Difficulty: "medium", XPReward: 35, MaxProgress: 45, Requirements: []string{"Complete 45 minutes of boxing training"}},
	{ID: "daily_gym_1", Title: "Fitness Goal", Description: "Complete 1 hour at the gym", Category: "daily", Difficulty: "medium", XPReward: 40, MaxProgress: 60, Requirements: []string{"Complete 60 minutes of gym workout"}},
	{ID: "weekly_consistency", Title: "Weekly Consistency", Description: "Be active for 5 days this week", Category: "weekly", Difficulty: "hard", XPReward: 100, MaxProgress: 5, Requirements: []string{"Be active for 5 different days this week"}},
}

var rivals = []LeaderboardEntry{
	{ID: "user2", Name: "Alex Johnson", Level: 8, TotalXP: 2450, WeeklyXP: 320, Rank: 2, Achievements: 12},
	{ID: "user3", Name: "Sarah Chen", Level: 6, TotalXP: 1890, WeeklyXP: 280, Rank: 3, Achievements: 9},
	{ID: "user4", Name: "Mike Wilson", Level: 5, TotalXP: 1250, WeeklyXP: 120, Rank: 4, Achievements: 7},
}

// DefaultAchievements returns a fresh copy of the built-in achievements.
func DefaultAchievements() []Achievement {
	out := slices.Clone(defaultAchievements)
	for i := range out {
		if out[i].Progress != nil {
			out[i].Progress = intPtr(*out[i].Progress)
		}
		if out[i].MaxProgress != nil {
			out[i].MaxProgress = intPtr(*out[i].MaxProgress)
		}
	}
	return out
}

// DefaultChallenges returns a fresh copy of the built-in challenges.
func DefaultChallenges() []Challenge {
	out := slices.Clone(defaultChallenges)
	for i := range out {
		out[i].Requirements = slices.Clone(out[i].Requirements)
	}
	return out
}

// NewState returns the store contents of a fresh install.
func NewState() State {
	return State{
		CurrentLevel:         1,
		RecentXPGains:        []XPGain{},
		Achievements:         DefaultAchievements(),
		UnlockedAchievements: []string{},
		Challenges:           DefaultChallenges(),
		Leaderboard:          []LeaderboardEntry{},
		CurrentUserID:        "user1",
		PendingRewards:       []Reward{},
	}
}

// Normalize fills missing collections after decoding a partial blob.
func Normalize(s State) State {
	if s.CurrentLevel < 1 {
		s.CurrentLevel = LevelForXP(s.CurrentXP)
	}
	if s.RecentXPGains == nil {
		s.RecentXPGains = []XPGain{}
	}
	if s.Achievements == nil {
		s.Achievements = DefaultAchievements()
	}
	if s.UnlockedAchievements == nil {
		s.UnlockedAchievements = []string{}
	}
	if s.Challenges == nil {
		s.Challenges = DefaultChallenges()
	}
	if s.Leaderboard == nil {
		s.Leaderboard = []LeaderboardEntry{}
	}
	if s.CurrentUserID == "" {
		s.CurrentUserID = "user1"
	}
	if s.PendingRewards == nil {
		s.PendingRewards = []Reward{}
	}
	return s
}

// Projection is the allow-listed set of fields pushed to the remote store.
func (s State) Projection() map[string]any {
	return map[string]any{
		"currentXP":            s.CurrentXP,
		"currentLevel":         s.CurrentLevel,
		"recentXPGains":        s.RecentXPGains,
		"achievements":         s.Achievements,
		"unlockedAchievements": s.UnlockedAchievements,
		"challenges":           s.Challenges,
		"dailyStreak":          s.DailyStreak,
		"lastActivityDate":     s.LastActivityDate,
		"leaderboard":          s.Leaderboard,
		"currentUserId":        s.CurrentUserID,
		"pendingRewards":       s.PendingRewards,
	}
}
