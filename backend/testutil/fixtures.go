package testutil

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/katuripu/katuripu/backend/models"
)

// Password is the clear-text password of every seeded user.
const Password = "password123"

func SeedUser(tb testing.TB, db *gorm.DB, username, role string) *models.User {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		Username:          username,
		Email:             username + "@example.com",
		PasswordHash:      string(hash),
		Role:              role,
		PreferredLanguage: "fr",
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSubject(tb testing.TB, db *gorm.DB, slug string) *models.Subject {
	tb.Helper()
	s := &models.Subject{Slug: slug, Title: slug}
	if err := db.Create(s).Error; err != nil {
		tb.Fatalf("seed subject: %v", err)
	}
	return s
}

func SeedRoadmap(tb testing.TB, db *gorm.DB, slug string, published bool, subjectID *uint) *models.Roadmap {
	tb.Helper()
	r := &models.Roadmap{Slug: slug, Title: slug, Difficulty: models.DifficultyEasy, SubjectID: subjectID}
	if err := db.Create(r).Error; err != nil {
		tb.Fatalf("seed roadmap: %v", err)
	}
	// gorm skips zero values that carry a default tag on create
	if published {
		if err := db.Model(r).Update("is_published", true).Error; err != nil {
			tb.Fatalf("publish roadmap: %v", err)
		}
		r.IsPublished = true
	}
	return r
}

func SeedNode(tb testing.TB, db *gorm.DB, roadmapID uint, title string) *models.RoadmapNode {
	tb.Helper()
	n := &models.RoadmapNode{RoadmapID: roadmapID, Title: title, NodeType: models.NodeTopic}
	if err := db.Create(n).Error; err != nil {
		tb.Fatalf("seed node: %v", err)
	}
	return n
}

func SeedEdge(tb testing.TB, db *gorm.DB, roadmapID, source, target uint) *models.RoadmapEdge {
	tb.Helper()
	e := &models.RoadmapEdge{RoadmapID: roadmapID, SourceNodeID: source, TargetNodeID: target}
	if err := db.Create(e).Error; err != nil {
		tb.Fatalf("seed edge: %v", err)
	}
	return e
}

func SeedExercise(tb testing.TB, db *gorm.DB, title, difficulty string) *models.Exercise {
	tb.Helper()
	e := &models.Exercise{
		Title:        title,
		ExerciseType: models.ExerciseQuiz,
		Difficulty:   difficulty,
		Content:      "content of " + title,
		Solution:     "solution of " + title,
	}
	if err := db.Create(e).Error; err != nil {
		tb.Fatalf("seed exercise: %v", err)
	}
	return e
}

func Link(tb testing.TB, db *gorm.DB, nodeID, exerciseID uint, order int) *models.NodeExercise {
	tb.Helper()
	l := &models.NodeExercise{NodeID: nodeID, ExerciseID: exerciseID, OrderIndex: order}
	if err := db.Create(l).Error; err != nil {
		tb.Fatalf("seed node exercise: %v", err)
	}
	return l
}
