package services

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/utils"
)

type SubjectService struct {
	DB    *gorm.DB
	Cache *RoadmapCache
	Log   *utils.Logger
}

func NewSubjectService(db *gorm.DB, rc *RoadmapCache, log *utils.Logger) *SubjectService {
	return &SubjectService{DB: db, Cache: rc, Log: log}
}

type SubjectInput struct {
	Slug        string
	Title       string
	Description string
	Icon        string
	I18n        models.Translations
}

func (s *SubjectService) List(ctx context.Context, lang string) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := s.DB.WithContext(ctx).Order("title").Find(&subjects).Error; err != nil {
		return nil, err
	}
	for i := range subjects {
		localizeSubject(&subjects[i], lang)
	}
	return subjects, nil
}

// GetBySlug returns a subject with its roadmaps; unpublished ones only for admins.
func (s *SubjectService) GetBySlug(ctx context.Context, slug, lang string, viewer Viewer) (*models.Subject, error) {
	var subject models.Subject
	err := s.DB.WithContext(ctx).
		Preload("Roadmaps", func(db *gorm.DB) *gorm.DB {
			if !viewer.IsAdmin() {
				db = db.Where("is_published = ?", true)
			}
			return db.Order("id")
		}).
		Where("slug = ?", slug).
		First(&subject).Error
	if err != nil {
		return nil, notFound(err)
	}
	localizeSubject(&subject, lang)
	return &subject, nil
}

func (s *SubjectService) Create(ctx context.Context, in SubjectInput) (*models.Subject, error) {
	if err := s.slugAvailable(ctx, 0, in.Slug); err != nil {
		return nil, err
	}
	subject := &models.Subject{
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		Icon:        in.Icon,
		I18n:        datatypes.NewJSONType(in.I18n),
	}
	if err := s.DB.WithContext(ctx).Create(subject).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return subject, nil
}

func (s *SubjectService) Update(ctx context.Context, id uint, in SubjectInput) (*models.Subject, error) {
	var subject models.Subject
	if err := s.DB.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, notFound(err)
	}
	if err := s.slugAvailable(ctx, id, in.Slug); err != nil {
		return nil, err
	}
	subject.Slug = in.Slug
	subject.Title = in.Title
	subject.Description = in.Description
	subject.Icon = in.Icon
	subject.I18n = datatypes.NewJSONType(in.I18n)
	if err := s.DB.WithContext(ctx).Save(&subject).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	affected, err := s.roadmapIDs(ctx, s.DB, id)
	if err != nil {
		s.Log.Warn("could not list roadmaps of subject", "subject_id", id, "error", err)
	}
	s.Cache.invalidate(ctx, affected...)
	return &subject, nil
}

// Delete removes the subject; its roadmaps stay, detached.
func (s *SubjectService) Delete(ctx context.Context, id uint) error {
	var affected []uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := s.roadmapIDs(ctx, tx, id)
		if err != nil {
			return err
		}
		affected = ids
		if err := tx.Model(&models.Roadmap{}).Where("subject_id = ?", id).Update("subject_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Subject{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Cache.invalidate(ctx, affected...)
	return nil
}

func (s *SubjectService) slugAvailable(ctx context.Context, selfID uint, slug string) error {
	q := s.DB.WithContext(ctx).Model(&models.Subject{}).Where("slug = ?", slug)
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
	return nil
}

func (s *SubjectService) roadmapIDs(ctx context.Context, db *gorm.DB, subjectID uint) ([]uint, error) {
	var ids []uint
	err := db.WithContext(ctx).Model(&models.Roadmap{}).Where("subject_id = ?", subjectID).Pluck("id", &ids).Error
	return ids, err
}
