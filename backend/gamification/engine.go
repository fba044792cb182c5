// Package gamification holds the XP, level, streak and achievement rules.
// It is pure: callers load the state, apply an event and persist the result.
package gamification

import (
	"time"

	"github.com/katuripu/katuripu/backend/models"
)

const (
	PointsPerLevel = 100
	dayLayout      = "2006-01-02"
)

var xpByDifficulty = map[string]int{
	models.DifficultyEasy:   10,
	models.DifficultyMedium: 20,
	models.DifficultyHard:   30,
}

// Result describes what a completion changed, for toasts and confetti.
type Result struct {
	XPGained        int                      `json:"xp_gained"`
	PreviousLevel   int                      `json:"previous_level"`
	Level           int                      `json:"level"`
	LevelUp         bool                     `json:"level_up"`
	NewAchievements []Achievement            `json:"new_achievements"`
	State           models.GamificationState `json:"state"`
}

func XPForDifficulty(difficulty string) int {
	if xp, ok := xpByDifficulty[difficulty]; ok {
		return xp
	}
	return xpByDifficulty[models.DifficultyEasy]
}

func LevelForPoints(points int) int {
	if points < 0 {
		points = 0
	}
	return 1 + points/PointsPerLevel
}

// LevelProgress returns the points earned inside the current level and the
// points a level spans.
func LevelProgress(points int) (into, span int) {
	if points < 0 {
		points = 0
	}
	return points % PointsPerLevel, PointsPerLevel
}

func NewState() models.GamificationState {
	return models.GamificationState{Level: 1, Achievements: []models.UnlockedAchievement{}}
}

// RecordActivity advances the daily streak for activity at now (UTC days).
func RecordActivity(state *models.GamificationState, now time.Time) {
	today := now.UTC().Format(dayLayout)
	switch {
	case state.LastActivityDate == today:
		if state.Streak == 0 {
			state.Streak = 1
		}
	case state.LastActivityDate == now.UTC().AddDate(0, 0, -1).Format(dayLayout):
		state.Streak++
	default:
		state.Streak = 1
	}
	state.LastActivityDate = today
	if state.Streak > state.LongestStreak {
		state.LongestStreak = state.Streak
	}
}

// CurrentStreak is the streak as seen at now: it drops to zero once a full
// day has passed without activity.
func CurrentStreak(state models.GamificationState, now time.Time) int {
	if state.LastActivityDate == "" {
		return 0
	}
	today := now.UTC().Format(dayLayout)
	yesterday := now.UTC().AddDate(0, 0, -1).Format(dayLayout)
	if state.LastActivityDate == today || state.LastActivityDate == yesterday {
		return state.Streak
	}
	return 0
}

// Evaluate unlocks every catalog achievement whose condition now holds.
func Evaluate(state *models.GamificationState, now time.Time) []Achievement {
	unlocked := []Achievement{}
	for _, a := range Catalog {
		if state.HasAchievement(a.ID) || !a.check(*state) {
			continue
		}
		state.Achievements = append(state.Achievements, models.UnlockedAchievement{ID: a.ID, UnlockedAt: now.UTC()})
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// ApplyCompletion awards XP for a first completion of an exercise of the
// given difficulty. roadmapsCompleted is the user's current number of fully
// completed roadmaps.
func ApplyCompletion(state models.GamificationState, difficulty string, roadmapsCompleted int, now time.Time) Result {
	if state.Level < 1 {
		state.Level = LevelForPoints(state.Points)
	}
	if state.Achievements == nil {
		state.Achievements = []models.UnlockedAchievement{}
	}
	prev := state.Level

	xp := XPForDifficulty(difficulty)
	state.Points += xp
	state.Level = LevelForPoints(state.Points)
	state.ExercisesCompleted++
	if roadmapsCompleted > state.RoadmapsCompleted {
		state.RoadmapsCompleted = roadmapsCompleted
	}
	RecordActivity(&state, now)

	return Result{
		XPGained:        xp,
		PreviousLevel:   prev,
		Level:           state.Level,
		LevelUp:         state.Level > prev,
		NewAchievements: Evaluate(&state, now),
		State:           state,
	}
}
