package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/katuripu/katuripu/backend/models"
)

type RoadmapService struct {
	DB    *gorm.DB
	Cache *RoadmapCache
}

func NewRoadmapService(db *gorm.DB, rc *RoadmapCache) *RoadmapService {
	return &RoadmapService{DB: db, Cache: rc}
}

type RoadmapFilter struct {
	Subject    string // slug
	Search     string
	Difficulty string
	Page
}

type RoadmapInput struct {
	SubjectID   *uint
	Slug        string
	Title       string
	Description string
	Difficulty  string
	IsPublished bool
	I18n        models.Translations
}

type NodePosition struct {
	ID        uint    `json:"id"`
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
}

type EdgeLink struct {
	SourceNodeID uint `json:"source_node_id"`
	TargetNodeID uint `json:"target_node_id"`
}

// GraphInput is a canvas save: node positions and the complete edge set.
type GraphInput struct {
	Nodes []NodePosition
	Edges []EdgeLink
}

func (s *RoadmapService) List(ctx context.Context, f RoadmapFilter, lang string, viewer Viewer) ([]models.Roadmap, int64, error) {
	page := f.Page.Normalize()
	q := s.DB.WithContext(ctx).Model(&models.Roadmap{})
	if !viewer.IsAdmin() {
		q = q.Where("is_published = ?", true)
	}
	if f.Subject != "" {
		q = q.Where("subject_id IN (?)", s.DB.Model(&models.Subject{}).Select("id").Where("slug = ?", f.Subject))
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := likePattern(strings.ToLower(search))
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var roadmaps []models.Roadmap
	if err := q.Preload("Subject").Order("id").Offset(page.offset()).Limit(page.PageSize).Find(&roadmaps).Error; err != nil {
		return nil, 0, err
	}
	for i := range roadmaps {
		localizeRoadmap(&roadmaps[i], lang)
	}
	return roadmaps, total, nil
}

// Detail returns the roadmap with its nodes, their ordered exercises and
// its edges, localized. Solutions are never part of it.
func (s *RoadmapService) Detail(ctx context.Context, id uint, lang string, viewer Viewer) (*models.Roadmap, error) {
	var roadmap models.Roadmap
	if !s.Cache.get(ctx, id, lang, &roadmap) {
		loaded, err := s.load(ctx, s.DB, id)
		if err != nil {
			return nil, err
		}
		localizeRoadmap(loaded, lang)
		s.Cache.set(ctx, id, lang, loaded)
		roadmap = *loaded
	}
	if !roadmap.IsPublished && !viewer.IsAdmin() {
		return nil, ErrNotFound
	}
	return &roadmap, nil
}

func (s *RoadmapService) load(ctx context.Context, db *gorm.DB, id uint) (*models.Roadmap, error) {
	var roadmap models.Roadmap
	err := db.WithContext(ctx).
		Preload("Subject").
		Preload("Nodes", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Nodes.Exercises", func(db *gorm.DB) *gorm.DB { return db.Order("order_index, id") }).
		Preload("Nodes.Exercises.Exercise").
		Preload("Edges", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&roadmap, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &roadmap, nil
}

func (s *RoadmapService) Create(ctx context.Context, authorID uint, in RoadmapInput) (*models.Roadmap, error) {
	if err := s.checkInput(ctx, 0, in); err != nil {
		return nil, err
	}
	roadmap := &models.Roadmap{
		SubjectID:   in.SubjectID,
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		Difficulty:  in.Difficulty,
		IsPublished: in.IsPublished,
		AuthorID:    authorID,
		I18n:        datatypes.NewJSONType(in.I18n),
	}
	if roadmap.Difficulty == "" {
		roadmap.Difficulty = models.DifficultyEasy
	}
	if err := s.DB.WithContext(ctx).Create(roadmap).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return roadmap, nil
}

func (s *RoadmapService) Update(ctx context.Context, id uint, in RoadmapInput) (*models.Roadmap, error) {
	var roadmap models.Roadmap
	if err := s.DB.WithContext(ctx).First(&roadmap, id).Error; err != nil {
		return nil, notFound(err)
	}
	if err := s.checkInput(ctx, id, in); err != nil {
		return nil, err
	}
	roadmap.SubjectID = in.SubjectID
	roadmap.Slug = in.Slug
	roadmap.Title = in.Title
	roadmap.Description = in.Description
	if in.Difficulty != "" {
		roadmap.Difficulty = in.Difficulty
	}
	roadmap.IsPublished = in.IsPublished
	roadmap.I18n = datatypes.NewJSONType(in.I18n)
	if err := s.DB.WithContext(ctx).Omit("Subject", "Nodes", "Edges").Save(&roadmap).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.Cache.invalidate(ctx, id)
	return &roadmap, nil
}

func (s *RoadmapService) checkInput(ctx context.Context, selfID uint, in RoadmapInput) error {
	q := s.DB.WithContext(ctx).Model(&models.Roadmap{}).Where("slug = ?", in.Slug)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	if in.SubjectID != nil {
		if err := s.DB.WithContext(ctx).Select("id").First(&models.Subject{}, *in.SubjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("subject_id", "does not exist")
			}
			return err
		}
	}
	return nil
}

// Delete removes the roadmap with its nodes, edges and node-exercise links.
// Exercises and user progress survive.
func (s *RoadmapService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Roadmap{}, id).Error; err != nil {
			return notFound(err)
		}
		nodeIDs := tx.Model(&models.RoadmapNode{}).Select("id").Where("roadmap_id = ?", id)
		if err := tx.Where("node_id IN (?)", nodeIDs).Delete(&models.NodeExercise{}).Error; err != nil {
			return err
		}
		if err := tx.Where("roadmap_id = ?", id).Delete(&models.RoadmapEdge{}).Error; err != nil {
			return err
		}
		if err := tx.Where("roadmap_id = ?", id).Delete(&models.RoadmapNode{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Roadmap{}, id).Error
	})
	if err != nil {
		return err
	}
	s.Cache.invalidate(ctx, id)
	return nil
}

// SaveGraph stores node positions and replaces the edge set in one
// transaction. The new edge set must be a valid DAG over the roadmap's nodes.
func (s *RoadmapService) SaveGraph(ctx context.Context, id uint, in GraphInput) ([]models.RoadmapEdge, error) {
	var saved []models.RoadmapEdge
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := lockRoadmap(tx, id)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		nodeIDs, _, err := loadGraph(tx, id)
		if err != nil {
			return err
		}
		known := make(map[uint]struct{}, len(nodeIDs))
		for _, nid := range nodeIDs {
			known[nid] = struct{}{}
		}
		for _, n := range in.Nodes {
			if _, ok := known[n.ID]; !ok {
				return invalid("nodes", "every node must belong to the roadmap")
			}
		}

		pairs := make([]edgePair, 0, len(in.Edges))
		for _, e := range in.Edges {
			pairs = append(pairs, edgePair{source: e.SourceNodeID, target: e.TargetNodeID})
		}
		if err := validateEdges(nodeIDs, pairs); err != nil {
			return err
		}

		for _, n := range in.Nodes {
			err := tx.Model(&models.RoadmapNode{}).Where("id = ?", n.ID).
				Updates(map[string]interface{}{"position_x": n.PositionX, "position_y": n.PositionY}).Error
			if err != nil {
				return err
			}
		}
		if err := tx.Where("roadmap_id = ?", id).Delete(&models.RoadmapEdge{}).Error; err != nil {
			return err
		}
		saved = make([]models.RoadmapEdge, 0, len(pairs))
		for _, p := range pairs {
			saved = append(saved, models.RoadmapEdge{RoadmapID: id, SourceNodeID: p.source, TargetNodeID: p.target})
		}
		if len(saved) > 0 {
			return tx.Create(&saved).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Cache.invalidate(ctx, id)
	return saved, nil
}

// TopologicalOrder lists node ids so that every prerequisite comes first.
func (s *RoadmapService) TopologicalOrder(ctx context.Context, id uint, viewer Viewer) ([]uint, error) {
	if err := visibleRoadmap(s.DB.WithContext(ctx), id, viewer); err != nil {
		return nil, err
	}
	nodeIDs, edges, err := loadGraph(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	order, ok := topoSort(nodeIDs, edges)
	if !ok {
		return nil, ErrCycle
	}
	return order, nil
}

func loadGraph(db *gorm.DB, roadmapID uint) ([]uint, []edgePair, error) {
	var nodeIDs []uint
	if err := db.Model(&models.RoadmapNode{}).Where("roadmap_id = ?", roadmapID).Order("id").Pluck("id", &nodeIDs).Error; err != nil {
		return nil, nil, err
	}
	var rows []models.RoadmapEdge
	if err := db.Where("roadmap_id = ?", roadmapID).Order("id").Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	edges := make([]edgePair, 0, len(rows))
	for _, r := range rows {
		edges = append(edges, edgePair{source: r.SourceNodeID, target: r.TargetNodeID})
	}
	return nodeIDs, edges, nil
}
