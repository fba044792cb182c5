package models

import "gorm.io/datatypes"

// Subject groups roadmaps by topic (mathematics, physics, programming...).
type Subject struct {
	Model
	Slug        string                           `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string                           `gorm:"not null" json:"title"`
	Description string                           `gorm:"type:text" json:"description"`
	Icon        string                           `json:"icon,omitempty"`
	I18n        datatypes.JSONType[Translations] `gorm:"column:i18n" json:"i18n"`
	Roadmaps    []Roadmap                        `gorm:"foreignKey:SubjectID" json:"roadmaps,omitempty"`
}

func (Subject) TableName() string { return "subjects" }
