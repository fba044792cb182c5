package models

import "gorm.io/datatypes"

const (
	ExerciseQuiz   = "quiz"
	ExerciseCoding = "coding"
	ExerciseTheory = "theory"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Exercise struct {
	Model
	Title        string                           `gorm:"not null" json:"title"`
	ExerciseType string                           `gorm:"not null;default:theory;index" json:"exercise_type"`
	Difficulty   string                           `gorm:"not null;default:easy;index" json:"difficulty"`
	Content      string                           `gorm:"type:text" json:"content"`
	Solution     string                           `gorm:"type:text" json:"solution,omitempty"`
	I18n         datatypes.JSONType[Translations] `gorm:"column:i18n" json:"i18n"`
}

func (Exercise) TableName() string { return "exercises" }
