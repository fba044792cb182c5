package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katuripu/katuripu/backend/models"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 15, 0, 0, 0, time.UTC)
}

func ids(as []Achievement) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.ID)
	}
	return out
}

func TestXPForDifficulty(t *testing.T) {
	assert.Equal(t, 10, XPForDifficulty("easy"))
	assert.Equal(t, 20, XPForDifficulty("medium"))
	assert.Equal(t, 30, XPForDifficulty("hard"))
	assert.Equal(t, 10, XPForDifficulty("legendary"))
}

func TestLevels(t *testing.T) {
	assert.Equal(t, 1, LevelForPoints(0))
	assert.Equal(t, 1, LevelForPoints(99))
	assert.Equal(t, 2, LevelForPoints(100))
	assert.Equal(t, 5, LevelForPoints(450))
	assert.Equal(t, 1, LevelForPoints(-5))

	into, span := LevelProgress(250)
	assert.Equal(t, 50, into)
	assert.Equal(t, 100, span)
}

func TestRecordActivityStreak(t *testing.T) {
	s := NewState()

	RecordActivity(&s, day(1))
	assert.Equal(t, 1, s.Streak)

	RecordActivity(&s, day(1).Add(3*time.Hour))
	assert.Equal(t, 1, s.Streak, "same day keeps streak")

	RecordActivity(&s, day(2))
	RecordActivity(&s, day(3))
	assert.Equal(t, 3, s.Streak)
	assert.Equal(t, 3, s.LongestStreak)

	RecordActivity(&s, day(6))
	assert.Equal(t, 1, s.Streak, "gap resets streak")
	assert.Equal(t, 3, s.LongestStreak)
	assert.Equal(t, "2024-03-06", s.LastActivityDate)
}

func TestCurrentStreak(t *testing.T) {
	s := NewState()
	assert.Equal(t, 0, CurrentStreak(s, day(1)))

	RecordActivity(&s, day(1))
	RecordActivity(&s, day(2))
	assert.Equal(t, 2, CurrentStreak(s, day(2)))
	assert.Equal(t, 2, CurrentStreak(s, day(3)))
	assert.Equal(t, 0, CurrentStreak(s, day(4)))
}

func TestApplyCompletionFirstSteps(t *testing.T) {
	res := ApplyCompletion(NewState(), models.DifficultyHard, 0, day(1))

	assert.Equal(t, 30, res.XPGained)
	assert.Equal(t, 30, res.State.Points)
	assert.False(t, res.LevelUp)
	assert.Equal(t, 1, res.State.ExercisesCompleted)
	assert.Equal(t, []string{"first_steps"}, ids(res.NewAchievements))

	res = ApplyCompletion(res.State, models.DifficultyEasy, 0, day(1))
	assert.Empty(t, res.NewAchievements, "achievements unlock once")
	assert.Len(t, res.State.Achievements, 1)
}

func TestApplyCompletionLevelUpAndStreak(t *testing.T) {
	s := NewState()
	var res Result
	for d := 1; d <= 4; d++ {
		res = ApplyCompletion(s, models.DifficultyHard, 0, day(d))
		s = res.State
	}
	// 4 * 30 = 120 points
	assert.Equal(t, 2, s.Level)
	assert.True(t, res.LevelUp)
	assert.Equal(t, 1, res.PreviousLevel)
	assert.Equal(t, 4, s.Streak)
	assert.True(t, s.HasAchievement("streak_3"))
	assert.False(t, s.HasAchievement("streak_7"))
}

func TestApplyCompletionRoadmapFinisher(t *testing.T) {
	res := ApplyCompletion(NewState(), models.DifficultyEasy, 1, day(1))
	require.Contains(t, ids(res.NewAchievements), "roadmap_finisher")
	assert.Equal(t, 1, res.State.RoadmapsCompleted)
}

func TestApplyCompletionRepairsZeroState(t *testing.T) {
	res := ApplyCompletion(models.GamificationState{Points: 95}, models.DifficultyEasy, 0, day(1))
	assert.Equal(t, 1, res.PreviousLevel)
	assert.Equal(t, 2, res.Level)
	assert.True(t, res.LevelUp)
	assert.NotNil(t, res.State.Achievements)
}

func TestAchievementTitle(t *testing.T) {
	a, ok := Lookup("streak_7")
	require.True(t, ok)
	assert.Equal(t, "Série de 7 jours", a.Title("fr"))
	assert.Equal(t, "7-day streak", a.Title("de"))

	_, ok = Lookup("nope")
	assert.False(t, ok)
}
