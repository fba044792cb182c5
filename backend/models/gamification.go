package models

import (
	"time"

	"gorm.io/datatypes"
)

type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// GamificationState is stored as an opaque JSON blob per user.
type GamificationState struct {
	Points             int                   `json:"points"`
	Level              int                   `json:"level"`
	Streak             int                   `json:"streak"`
	LongestStreak      int                   `json:"longest_streak"`
	LastActivityDate   string                `json:"last_activity_date,omitempty"` // YYYY-MM-DD, UTC
	ExercisesCompleted int                   `json:"exercises_completed"`
	RoadmapsCompleted  int                   `json:"roadmaps_completed"`
	Achievements       []UnlockedAchievement `json:"achievements"`
}

func (s GamificationState) HasAchievement(id string) bool {
	for _, a := range s.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

type UserGamificationState struct {
	Model
	UserID uint                                  `gorm:"uniqueIndex;not null" json:"user_id"`
	Points int                                   `gorm:"index;not null;default:0" json:"points"`
	State  datatypes.JSONType[GamificationState] `json:"state"`
}

func (UserGamificationState) TableName() string { return "user_gamification_states" }
