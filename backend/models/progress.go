package models

import "time"

type UserExerciseProgress struct {
	Model
	UserID      uint       `gorm:"uniqueIndex:idx_user_exercise;not null" json:"user_id"`
	ExerciseID  uint       `gorm:"uniqueIndex:idx_user_exercise;index;not null" json:"exercise_id"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	XPAwarded   bool       `gorm:"column:xp_awarded;not null;default:false" json:"-"`
}

func (UserExerciseProgress) TableName() string { return "user_exercise_progress" }

// NodeProgress is the per-node view of a user's roadmap progress.
type NodeProgress struct {
	NodeID    uint   `json:"node_id"`
	Title     string `json:"title"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Percent   int    `json:"percent"`
	Status    string `json:"status"`
}

const (
	NodeStatusCompleted  = "completed"
	NodeStatusInProgress = "in_progress"
	NodeStatusAvailable  = "available"
	NodeStatusLocked     = "locked"
)

type RoadmapProgress struct {
	RoadmapID uint           `json:"roadmap_id"`
	Title     string         `json:"title"`
	Total     int            `json:"total"`
	Completed int            `json:"completed"`
	Percent   int            `json:"percent"`
	Nodes     []NodeProgress `json:"nodes,omitempty"`
}
