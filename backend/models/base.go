package models

import "time"

// Model replaces gorm.Model without soft deletes so that slugs and
// composite unique keys can be reused after a hard delete.
type Model struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&LoginHistory{},
		&Subject{},
		&Exercise{},
		&Roadmap{},
		&RoadmapNode{},
		&RoadmapEdge{},
		&NodeExercise{},
		&UserExerciseProgress{},
		&UserGamificationState{},
	}
}
