package models

import "gorm.io/datatypes"

const (
	NodeTopic     = "topic"
	NodeMilestone = "milestone"
)

// Roadmap is a learning path: nodes joined by prerequisite edges into a DAG.
type Roadmap struct {
	Model
	SubjectID   *uint                            `gorm:"index" json:"subject_id,omitempty"`
	Subject     *Subject                         `gorm:"constraint:OnDelete:SET NULL" json:"subject,omitempty"`
	Slug        string                           `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string                           `gorm:"not null" json:"title"`
	Description string                           `gorm:"type:text" json:"description"`
	Difficulty  string                           `gorm:"default:easy" json:"difficulty"`
	IsPublished bool                             `gorm:"default:false;index" json:"is_published"`
	AuthorID    uint                             `json:"author_id"`
	I18n        datatypes.JSONType[Translations] `gorm:"column:i18n" json:"i18n"`
	Nodes       []RoadmapNode                    `gorm:"constraint:OnDelete:CASCADE" json:"nodes,omitempty"`
	Edges       []RoadmapEdge                    `gorm:"constraint:OnDelete:CASCADE" json:"edges,omitempty"`
}

func (Roadmap) TableName() string { return "roadmaps" }

type RoadmapNode struct {
	Model
	RoadmapID   uint                             `gorm:"index;not null" json:"roadmap_id"`
	Title       string                           `gorm:"not null" json:"title"`
	Description string                           `gorm:"type:text" json:"description"`
	NodeType    string                           `gorm:"default:topic" json:"node_type"`
	PositionX   float64                          `json:"position_x"`
	PositionY   float64                          `json:"position_y"`
	I18n        datatypes.JSONType[Translations] `gorm:"column:i18n" json:"i18n"`
	Exercises   []NodeExercise                   `gorm:"foreignKey:NodeID;constraint:OnDelete:CASCADE" json:"exercises,omitempty"`
}

func (RoadmapNode) TableName() string { return "roadmap_nodes" }

// RoadmapEdge is a prerequisite link: SourceNodeID must be done before TargetNodeID.
type RoadmapEdge struct {
	Model
	RoadmapID    uint `gorm:"index;not null" json:"roadmap_id"`
	SourceNodeID uint `gorm:"uniqueIndex:idx_edge_source_target;not null" json:"source_node_id"`
	TargetNodeID uint `gorm:"uniqueIndex:idx_edge_source_target;index;not null" json:"target_node_id"`
}

func (RoadmapEdge) TableName() string { return "roadmap_edges" }

type NodeExercise struct {
	Model
	NodeID     uint      `gorm:"uniqueIndex:idx_node_exercise;not null" json:"node_id"`
	ExerciseID uint      `gorm:"uniqueIndex:idx_node_exercise;index;not null" json:"exercise_id"`
	Exercise   *Exercise `gorm:"constraint:OnDelete:CASCADE" json:"exercise,omitempty"`
	OrderIndex int       `gorm:"not null;default:0" json:"order_index"`
}

func (NodeExercise) TableName() string { return "node_exercises" }
