package services

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/katuripu/katuripu/backend/models"
)

type NodeService struct {
	DB    *gorm.DB
	Cache *RoadmapCache
}

func NewNodeService(db *gorm.DB, rc *RoadmapCache) *NodeService {
	return &NodeService{DB: db, Cache: rc}
}

type NodeInput struct {
	RoadmapID   uint
	Title       string
	Description string
	NodeType    string
	PositionX   float64
	PositionY   float64
	I18n        models.Translations
}

func (s *NodeService) Create(ctx context.Context, in NodeInput) (*models.RoadmapNode, error) {
	if err := s.DB.WithContext(ctx).Select("id").First(&models.Roadmap{}, in.RoadmapID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("roadmap_id", "does not exist")
		}
		return nil, err
	}
	node := &models.RoadmapNode{
		RoadmapID:   in.RoadmapID,
		Title:       in.Title,
		Description: in.Description,
		NodeType:    in.NodeType,
		PositionX:   in.PositionX,
		PositionY:   in.PositionY,
		I18n:        datatypes.NewJSONType(in.I18n),
	}
	if node.NodeType == "" {
		node.NodeType = models.NodeTopic
	}
	if err := s.DB.WithContext(ctx).Create(node).Error; err != nil {
		return nil, err
	}
	s.Cache.invalidate(ctx, node.RoadmapID)
	return node, nil
}

// Get returns the node with its exercises in order, without solutions.
// Nodes of unpublished roadmaps are only visible to admins.
func (s *NodeService) Get(ctx context.Context, id uint, lang string, viewer Viewer) (*models.RoadmapNode, error) {
	var node models.RoadmapNode
	err := s.DB.WithContext(ctx).
		Preload("Exercises", func(db *gorm.DB) *gorm.DB { return db.Order("order_index, id") }).
		Preload("Exercises.Exercise").
		First(&node, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	if err := visibleRoadmap(s.DB.WithContext(ctx), node.RoadmapID, viewer); err != nil {
		return nil, err
	}
	localizeNode(&node, lang)
	return &node, nil
}

// Update edits a node in place; it never moves to another roadmap.
func (s *NodeService) Update(ctx context.Context, id uint, in NodeInput) (*models.RoadmapNode, error) {
	node, err := s.find(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	node.Title = in.Title
	node.Description = in.Description
	if in.NodeType != "" {
		node.NodeType = in.NodeType
	}
	node.PositionX = in.PositionX
	node.PositionY = in.PositionY
	node.I18n = datatypes.NewJSONType(in.I18n)
	if err := s.DB.WithContext(ctx).Omit("Exercises").Save(node).Error; err != nil {
		return nil, err
	}
	s.Cache.invalidate(ctx, node.RoadmapID)
	return node, nil
}

// Delete removes the node together with its edges and exercise links.
func (s *NodeService) Delete(ctx context.Context, id uint) error {
	var roadmapID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		node, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		roadmapID = node.RoadmapID
		if _, err := lockRoadmap(tx, roadmapID); err != nil {
			return err
		}
		if err := tx.Where("node_id = ?", id).Delete(&models.NodeExercise{}).Error; err != nil {
			return err
		}
		if err := tx.Where("source_node_id = ? OR target_node_id = ?", id, id).Delete(&models.RoadmapEdge{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.RoadmapNode{}, id).Error
	})
	if err != nil {
		return err
	}
	s.Cache.invalidate(ctx, roadmapID)
	return nil
}

// AttachExercise links an existing exercise to the node. A nil orderIndex
// appends it after the current last one.
func (s *NodeService) AttachExercise(ctx context.Context, nodeID, exerciseID uint, orderIndex *int) (*models.NodeExercise, error) {
	var link *models.NodeExercise
	var roadmapID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		node, err := s.find(ctx, tx, nodeID)
		if err != nil {
			return err
		}
		roadmapID = node.RoadmapID
		if _, err := lockRoadmap(tx, roadmapID); err != nil {
			return err
		}

		var exercise models.Exercise
		if err := tx.First(&exercise, exerciseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("exercise_id", "does not exist")
			}
			return err
		}

		var n int64
		if err := tx.Model(&models.NodeExercise{}).Where("node_id = ? AND exercise_id = ?", nodeID, exerciseID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}

		index := 0
		if orderIndex != nil {
			index = *orderIndex
		} else {
			var next struct{ Next int }
			if err := tx.Model(&models.NodeExercise{}).
				Select("COALESCE(MAX(order_index), -1) + 1 AS next").
				Where("node_id = ?", nodeID).
				Scan(&next).Error; err != nil {
				return err
			}
			index = next.Next
		}

		link = &models.NodeExercise{NodeID: nodeID, ExerciseID: exerciseID, OrderIndex: index}
		if err := tx.Create(link).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return err
		}
		exercise.Solution = ""
		link.Exercise = &exercise
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Cache.invalidate(ctx, roadmapID)
	return link, nil
}

func (s *NodeService) DetachExercise(ctx context.Context, nodeID, exerciseID uint) error {
	node, err := s.find(ctx, s.DB, nodeID)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Where("node_id = ? AND exercise_id = ?", nodeID, exerciseID).Delete(&models.NodeExercise{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.Cache.invalidate(ctx, node.RoadmapID)
	return nil
}

// ReorderExercises rewrites order indexes to 0..n-1 following exerciseIDs,
// which must list every exercise of the node exactly once.
func (s *NodeService) ReorderExercises(ctx context.Context, nodeID uint, exerciseIDs []uint) ([]models.NodeExercise, error) {
	var links []models.NodeExercise
	var roadmapID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		node, err := s.find(ctx, tx, nodeID)
		if err != nil {
			return err
		}
		roadmapID = node.RoadmapID

		if err := tx.Clauses(lockingClause(tx)...).Where("node_id = ?", nodeID).Find(&links).Error; err != nil {
			return err
		}
		byExercise := make(map[uint]int, len(links))
		for i, l := range links {
			byExercise[l.ExerciseID] = i
		}
		if len(exerciseIDs) != len(links) {
			return invalid("exercise_ids", "must list every exercise of the node exactly once")
		}
		seen := make(map[uint]struct{}, len(exerciseIDs))
		for _, id := range exerciseIDs {
			if _, ok := byExercise[id]; !ok {
				return invalid("exercise_ids", "must list every exercise of the node exactly once")
			}
			if _, dup := seen[id]; dup {
				return invalid("exercise_ids", "must list every exercise of the node exactly once")
			}
			seen[id] = struct{}{}
		}

		ordered := make([]models.NodeExercise, 0, len(links))
		for i, id := range exerciseIDs {
			l := links[byExercise[id]]
			if err := tx.Model(&models.NodeExercise{}).Where("id = ?", l.ID).Update("order_index", i).Error; err != nil {
				return err
			}
			l.OrderIndex = i
			ordered = append(ordered, l)
		}
		links = ordered
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Cache.invalidate(ctx, roadmapID)
	return links, nil
}

func (s *NodeService) find(ctx context.Context, db *gorm.DB, id uint) (*models.RoadmapNode, error) {
	var node models.RoadmapNode
	if err := db.WithContext(ctx).First(&node, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &node, nil
}

// lockRoadmap takes the roadmap row lock that serializes graph writes of one
// roadmap. found is false when the roadmap does not exist.
func lockRoadmap(tx *gorm.DB, roadmapID uint) (found bool, err error) {
	var ids []uint
	err = tx.Model(&models.Roadmap{}).Clauses(lockingClause(tx)...).
		Where("id = ?", roadmapID).Pluck("id", &ids).Error
	return len(ids) > 0, err
}

// visibleRoadmap hides unpublished roadmaps from everyone but admins.
func visibleRoadmap(db *gorm.DB, roadmapID uint, viewer Viewer) error {
	var roadmap models.Roadmap
	if err := db.Select("id", "is_published").First(&roadmap, roadmapID).Error; err != nil {
		return notFound(err)
	}
	if !roadmap.IsPublished && !viewer.IsAdmin() {
		return ErrNotFound
	}
	return nil
}

// lockingClause adds SELECT ... FOR UPDATE where the dialect supports it.
func lockingClause(db *gorm.DB) []clause.Expression {
	if db.Dialector.Name() == "postgres" {
		return []clause.Expression{clause.Locking{Strength: "UPDATE"}}
	}
	return nil
}
