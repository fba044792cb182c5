package database

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

// SeedFile is the YAML layout accepted by Seed. Exercises are referenced by
// key from nodes; nodes are referenced by key from edges.
type SeedFile struct {
	Subjects  []SeedSubject  `yaml:"subjects"`
	Exercises []SeedExercise `yaml:"exercises"`
	Roadmaps  []SeedRoadmap  `yaml:"roadmaps"`
}

type SeedSubject struct {
	Slug        string              `yaml:"slug"`
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Icon        string              `yaml:"icon"`
	I18n        models.Translations `yaml:"i18n"`
}

type SeedExercise struct {
	Key        string              `yaml:"key"`
	Title      string              `yaml:"title"`
	Type       string              `yaml:"type"`
	Difficulty string              `yaml:"difficulty"`
	Content    string              `yaml:"content"`
	Solution   string              `yaml:"solution"`
	I18n       models.Translations `yaml:"i18n"`
}

type SeedRoadmap struct {
	Slug        string              `yaml:"slug"`
	Subject     string              `yaml:"subject"`
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Difficulty  string              `yaml:"difficulty"`
	Published   bool                `yaml:"published"`
	I18n        models.Translations `yaml:"i18n"`
	Nodes       []SeedNode          `yaml:"nodes"`
	Edges       [][]string          `yaml:"edges"`
}

type SeedNode struct {
	Key         string              `yaml:"key"`
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Type        string              `yaml:"type"`
	X           float64             `yaml:"x"`
	Y           float64             `yaml:"y"`
	I18n        models.Translations `yaml:"i18n"`
	Exercises   []string            `yaml:"exercises"`
}

// SeedReport counts what a seed run created.
type SeedReport struct {
	Subjects  int
	Exercises int
	Roadmaps  int
	Skipped   int
}

// Seed loads a YAML seed document in one transaction. Subjects are upserted
// by slug, exercises are reused by title and existing roadmaps (by slug) are
// left untouched, so running it twice changes nothing.
func Seed(ctx context.Context, db *gorm.DB, r io.Reader, log *utils.Logger) (SeedReport, error) {
	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return SeedReport{}, fmt.Errorf("parse seed: %w", err)
	}

	var report SeedReport
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		svc := services.New(tx, nil, log)
		report = SeedReport{}

		subjects := make(map[string]uint, len(file.Subjects))
		for _, s := range file.Subjects {
			id, created, err := seedSubject(ctx, tx, svc, s)
			if err != nil {
				return fmt.Errorf("subject %q: %w", s.Slug, err)
			}
			subjects[s.Slug] = id
			if created {
				report.Subjects++
			}
		}

		exercises := make(map[string]uint, len(file.Exercises))
		for _, e := range file.Exercises {
			id, created, err := seedExercise(ctx, tx, svc, e)
			if err != nil {
				return fmt.Errorf("exercise %q: %w", e.Key, err)
			}
			exercises[e.Key] = id
			if created {
				report.Exercises++
			}
		}

		for _, rm := range file.Roadmaps {
			var n int64
			if err := tx.Model(&models.Roadmap{}).Where("slug = ?", rm.Slug).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				report.Skipped++
				continue
			}
			if err := seedRoadmap(ctx, svc, rm, subjects, exercises); err != nil {
				return fmt.Errorf("roadmap %q: %w", rm.Slug, err)
			}
			report.Roadmaps++
		}
		return nil
	})
	if err != nil {
		return SeedReport{}, err
	}
	log.Info("seed applied", "subjects", report.Subjects, "exercises", report.Exercises,
		"roadmaps", report.Roadmaps, "skipped", report.Skipped)
	return report, nil
}

func seedSubject(ctx context.Context, tx *gorm.DB, svc *services.Services, s SeedSubject) (uint, bool, error) {
	in := services.SubjectInput{Slug: s.Slug, Title: s.Title, Description: s.Description, Icon: s.Icon, I18n: s.I18n}
	var existing models.Subject
	err := tx.Where("slug = ?", s.Slug).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created, err := svc.Subjects.Create(ctx, in)
		if err != nil {
			return 0, false, err
		}
		return created.ID, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	_, err = svc.Subjects.Update(ctx, existing.ID, in)
	return existing.ID, false, err
}

func seedExercise(ctx context.Context, tx *gorm.DB, svc *services.Services, e SeedExercise) (uint, bool, error) {
	var existing models.Exercise
	err := tx.Where("title = ?", e.Title).First(&existing).Error
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}
	created, err := svc.Exercises.Create(ctx, services.ExerciseInput{
		Title:        e.Title,
		ExerciseType: e.Type,
		Difficulty:   e.Difficulty,
		Content:      e.Content,
		Solution:     e.Solution,
		I18n:         e.I18n,
	})
	if err != nil {
		return 0, false, err
	}
	return created.ID, true, nil
}

func seedRoadmap(ctx context.Context, svc *services.Services, rm SeedRoadmap, subjects, exercises map[string]uint) error {
	in := services.RoadmapInput{
		Slug:        rm.Slug,
		Title:       rm.Title,
		Description: rm.Description,
		Difficulty:  rm.Difficulty,
		IsPublished: rm.Published,
		I18n:        rm.I18n,
	}
	if rm.Subject != "" {
		id, ok := subjects[rm.Subject]
		if !ok {
			return fmt.Errorf("unknown subject %q", rm.Subject)
		}
		in.SubjectID = &id
	}
	roadmap, err := svc.Roadmaps.Create(ctx, 0, in)
	if err != nil {
		return err
	}

	nodes := make(map[string]uint, len(rm.Nodes))
	for _, n := range rm.Nodes {
		node, err := svc.Nodes.Create(ctx, services.NodeInput{
			RoadmapID:   roadmap.ID,
			Title:       n.Title,
			Description: n.Description,
			NodeType:    n.Type,
			PositionX:   n.X,
			PositionY:   n.Y,
			I18n:        n.I18n,
		})
		if err != nil {
			return err
		}
		nodes[n.Key] = node.ID
		for i, key := range n.Exercises {
			exID, ok := exercises[key]
			if !ok {
				return fmt.Errorf("node %q: unknown exercise %q", n.Key, key)
			}
			order := i
			if _, err := svc.Nodes.AttachExercise(ctx, node.ID, exID, &order); err != nil {
				return fmt.Errorf("node %q: exercise %q: %w", n.Key, key, err)
			}
		}
	}

	for _, e := range rm.Edges {
		if len(e) != 2 {
			return fmt.Errorf("edge %v: want [source, target]", e)
		}
		source, ok := nodes[e[0]]
		if !ok {
			return fmt.Errorf("edge %v: unknown node %q", e, e[0])
		}
		target, ok := nodes[e[1]]
		if !ok {
			return fmt.Errorf("edge %v: unknown node %q", e, e[1])
		}
		_, err := svc.Edges.Create(ctx, services.EdgeInput{RoadmapID: roadmap.ID, SourceNodeID: source, TargetNodeID: target})
		if err != nil {
			return fmt.Errorf("edge %v: %w", e, err)
		}
	}
	return nil
}
