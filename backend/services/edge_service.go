package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/katuripu/katuripu/backend/models"
)

type EdgeService struct {
	DB    *gorm.DB
	Cache *RoadmapCache
}

func NewEdgeService(db *gorm.DB, rc *RoadmapCache) *EdgeService {
	return &EdgeService{DB: db, Cache: rc}
}

type EdgeInput struct {
	RoadmapID    uint
	SourceNodeID uint
	TargetNodeID uint
}

// Create adds a prerequisite link. Both nodes must belong to the roadmap,
// and the link must not duplicate an existing one or close a cycle.
func (s *EdgeService) Create(ctx context.Context, in EdgeInput) (*models.RoadmapEdge, error) {
	edge := &models.RoadmapEdge{
		RoadmapID:    in.RoadmapID,
		SourceNodeID: in.SourceNodeID,
		TargetNodeID: in.TargetNodeID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := lockRoadmap(tx, in.RoadmapID)
		if err != nil {
			return err
		}
		if !found {
			return ErrInvalidEdge
		}
		nodeIDs, edges, err := loadGraph(tx, in.RoadmapID)
		if err != nil {
			return err
		}
		edges = append(edges, edgePair{source: in.SourceNodeID, target: in.TargetNodeID})
		if err := validateEdges(nodeIDs, edges); err != nil {
			return err
		}
		if err := tx.Create(edge).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Cache.invalidate(ctx, in.RoadmapID)
	return edge, nil
}

func (s *EdgeService) Delete(ctx context.Context, id uint) error {
	var edge models.RoadmapEdge
	if err := s.DB.WithContext(ctx).First(&edge, id).Error; err != nil {
		return notFound(err)
	}
	if err := s.DB.WithContext(ctx).Delete(&edge).Error; err != nil {
		return err
	}
	s.Cache.invalidate(ctx, edge.RoadmapID)
	return nil
}
