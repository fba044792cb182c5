package services

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/utils"
)

type ExerciseService struct {
	DB    *gorm.DB
	Cache *RoadmapCache
	Log   *utils.Logger
}

func NewExerciseService(db *gorm.DB, rc *RoadmapCache, log *utils.Logger) *ExerciseService {
	return &ExerciseService{DB: db, Cache: rc, Log: log}
}

type ExerciseFilter struct {
	Type       string
	Difficulty string
	Search     string
	Page
}

type ExerciseInput struct {
	Title        string
	ExerciseType string
	Difficulty   string
	Content      string
	Solution     string
	I18n         models.Translations
}

// List never includes solutions.
func (s *ExerciseService) List(ctx context.Context, f ExerciseFilter, lang string) ([]models.Exercise, int64, error) {
	page := f.Page.Normalize()
	q := s.DB.WithContext(ctx).Model(&models.Exercise{})
	if f.Type != "" {
		q = q.Where("exercise_type = ?", f.Type)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("LOWER(title) LIKE ?", likePattern(strings.ToLower(search)))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var exercises []models.Exercise
	if err := q.Order("id").Offset(page.offset()).Limit(page.PageSize).Find(&exercises).Error; err != nil {
		return nil, 0, err
	}
	for i := range exercises {
		localizeExercise(&exercises[i], lang)
		exercises[i].Solution = ""
	}
	return exercises, total, nil
}

// Get returns an exercise. The solution is only shown to admins and to
// learners who completed the exercise.
func (s *ExerciseService) Get(ctx context.Context, id uint, lang string, viewer Viewer) (*models.Exercise, error) {
	var exercise models.Exercise
	if err := s.DB.WithContext(ctx).First(&exercise, id).Error; err != nil {
		return nil, notFound(err)
	}
	localizeExercise(&exercise, lang)
	if viewer.IsAdmin() {
		return &exercise, nil
	}

	var n int64
	err := s.DB.WithContext(ctx).Model(&models.UserExerciseProgress{}).
		Where("user_id = ? AND exercise_id = ? AND completed = ?", viewer.UserID, id, true).
		Count(&n).Error
	if err != nil {
		return nil, err
	}
	if n == 0 {
		exercise.Solution = ""
	}
	return &exercise, nil
}

func (s *ExerciseService) Create(ctx context.Context, in ExerciseInput) (*models.Exercise, error) {
	exercise := &models.Exercise{}
	in.apply(exercise)
	if err := s.DB.WithContext(ctx).Create(exercise).Error; err != nil {
		return nil, err
	}
	return exercise, nil
}

func (s *ExerciseService) Update(ctx context.Context, id uint, in ExerciseInput) (*models.Exercise, error) {
	var exercise models.Exercise
	if err := s.DB.WithContext(ctx).First(&exercise, id).Error; err != nil {
		return nil, notFound(err)
	}
	in.apply(&exercise)
	if err := s.DB.WithContext(ctx).Save(&exercise).Error; err != nil {
		return nil, err
	}
	affected, err := s.roadmapIDs(ctx, s.DB, id)
	if err != nil {
		s.Log.Warn("could not list roadmaps linking exercise", "exercise_id", id, "error", err)
	}
	s.Cache.invalidate(ctx, affected...)
	return &exercise, nil
}

// Delete removes the exercise, its node links and every progress row on it.
func (s *ExerciseService) Delete(ctx context.Context, id uint) error {
	var affected []uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Exercise{}, id).Error; err != nil {
			return notFound(err)
		}
		ids, err := s.roadmapIDs(ctx, tx, id)
		if err != nil {
			return err
		}
		affected = ids
		if err := tx.Where("exercise_id = ?", id).Delete(&models.NodeExercise{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exercise_id = ?", id).Delete(&models.UserExerciseProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Exercise{}, id).Error
	})
	if err != nil {
		return err
	}
	s.Cache.invalidate(ctx, affected...)
	return nil
}

func (in ExerciseInput) apply(e *models.Exercise) {
	e.Title = in.Title
	e.ExerciseType = in.ExerciseType
	if e.ExerciseType == "" {
		e.ExerciseType = models.ExerciseTheory
	}
	e.Difficulty = in.Difficulty
	if e.Difficulty == "" {
		e.Difficulty = models.DifficultyEasy
	}
	e.Content = in.Content
	e.Solution = in.Solution
	e.I18n = datatypes.NewJSONType(in.I18n)
}

// roadmapIDs lists the roadmaps whose nodes link the exercise.
func (s *ExerciseService) roadmapIDs(ctx context.Context, db *gorm.DB, exerciseID uint) ([]uint, error) {
	var ids []uint
	err := db.WithContext(ctx).Model(&models.RoadmapNode{}).
		Distinct().
		Joins("JOIN node_exercises ON node_exercises.node_id = roadmap_nodes.id").
		Where("node_exercises.exercise_id = ?", exerciseID).
		Pluck("roadmap_nodes.roadmap_id", &ids).Error
	return ids, err
}
