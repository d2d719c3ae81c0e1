package gamification

import "math"

// XPForLevel is the XP needed to clear level.
func XPForLevel(level int) int {
	return int(math.Floor(100 * math.Pow(1.5, float64(level-1))))
}

// LevelForXP returns the level reached with xp total experience.
func LevelForXP(xp int) int {
	level, total := 1, 0
	for {
		total += XPForLevel(level)
		if total > xp {
			return level
		}
		level++
	}
}

// XPToNextLevel is the XP still missing to leave the current level.
func XPToNextLevel(s State) int {
	spent := 0
	for i := 1; i < s.CurrentLevel; i++ {
		spent += XPForLevel(i)
	}
	return XPForLevel(s.CurrentLevel) - (s.CurrentXP - spent)
}

// XPForCurrentLevel is the size of the current level.
func XPForCurrentLevel(s State) int {
	return XPForLevel(s.CurrentLevel)
}

// UnlockedCount counts achievements marked unlocked.
func UnlockedCount(s State) int {
	n := 0
	for _, a := range s.Achievements {
		if a.IsUnlocked {
			n++
		}
	}
	return n
}
