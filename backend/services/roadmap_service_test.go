package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/testutil"
)

var admin = Viewer{UserID: 1, Role: models.RoleAdmin}
var learner = Viewer{UserID: 2, Role: models.RoleUser}

func TestRoadmapList(t *testing.T) {
	svc, db := newServices(t)
	math := testutil.SeedSubject(t, db, "mathematics")
	testutil.SeedRoadmap(t, db, "algebra", true, &math.ID)
	testutil.SeedRoadmap(t, db, "geometry", false, &math.ID)
	testutil.SeedRoadmap(t, db, "go-basics", true, nil)

	list, total, err := svc.Roadmaps.List(ctx, RoadmapFilter{}, "fr", learner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	_, total, err = svc.Roadmaps.List(ctx, RoadmapFilter{}, "fr", admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	list, total, err = svc.Roadmaps.List(ctx, RoadmapFilter{Subject: "mathematics"}, "fr", admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "algebra", list[0].Slug)

	list, _, err = svc.Roadmaps.List(ctx, RoadmapFilter{Search: "GEO"}, "fr", admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "geometry", list[0].Slug)

	list, total, err = svc.Roadmaps.List(ctx, RoadmapFilter{Page: Page{Page: 2, PageSize: 2}}, "fr", admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 1)
	assert.Equal(t, "go-basics", list[0].Slug)
}

func TestRoadmapCreateUpdate(t *testing.T) {
	svc, db := newServices(t)
	math := testutil.SeedSubject(t, db, "mathematics")

	r, err := svc.Roadmaps.Create(ctx, 7, RoadmapInput{SubjectID: &math.ID, Slug: "algebra", Title: "Algèbre"})
	require.NoError(t, err)
	assert.Equal(t, uint(7), r.AuthorID)
	assert.Equal(t, models.DifficultyEasy, r.Difficulty)

	_, err = svc.Roadmaps.Create(ctx, 7, RoadmapInput{Slug: "algebra", Title: "Again"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Roadmaps.Create(ctx, 7, RoadmapInput{SubjectID: uintPtr(99), Slug: "physics", Title: "Physique"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	updated, err := svc.Roadmaps.Update(ctx, r.ID, RoadmapInput{Slug: "algebra", Title: "Algèbre 1", IsPublished: true, Difficulty: models.DifficultyMedium})
	require.NoError(t, err)
	assert.Equal(t, "Algèbre 1", updated.Title)
	assert.True(t, updated.IsPublished)
	assert.Nil(t, updated.SubjectID)

	_, err = svc.Roadmaps.Update(ctx, 404, RoadmapInput{Slug: "x", Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoadmapDetailLocalizedAndCached(t *testing.T) {
	svc, db := newServices(t)
	r, err := svc.Roadmaps.Create(ctx, 1, RoadmapInput{
		Slug: "algebra", Title: "Algèbre", IsPublished: true,
		I18n: models.Translations{"en": {Title: "Algebra"}, "ar": {Title: "الجبر"}},
	})
	require.NoError(t, err)
	n1 := testutil.SeedNode(t, db, r.ID, "Nombres")
	n2 := testutil.SeedNode(t, db, r.ID, "Équations")
	testutil.SeedEdge(t, db, r.ID, n1.ID, n2.ID)
	ex2 := testutil.SeedExercise(t, db, "second", models.DifficultyEasy)
	ex1 := testutil.SeedExercise(t, db, "first", models.DifficultyEasy)
	testutil.Link(t, db, n1.ID, ex2.ID, 1)
	testutil.Link(t, db, n1.ID, ex1.ID, 0)

	detail, err := svc.Roadmaps.Detail(ctx, r.ID, "en", learner)
	require.NoError(t, err)
	assert.Equal(t, "Algebra", detail.Title)
	require.Len(t, detail.Nodes, 2)
	require.Len(t, detail.Nodes[0].Exercises, 2)
	assert.Equal(t, ex1.ID, detail.Nodes[0].Exercises[0].ExerciseID)
	assert.Empty(t, detail.Nodes[0].Exercises[0].Exercise.Solution)
	require.Len(t, detail.Edges, 1)

	ar, err := svc.Roadmaps.Detail(ctx, r.ID, "ar", learner)
	require.NoError(t, err)
	assert.Equal(t, "الجبر", ar.Title)

	// a write behind the service's back is not seen until invalidation
	require.NoError(t, db.Model(&models.Roadmap{}).Where("id = ?", r.ID).Update("title", "Changed").Error)
	fr, err := svc.Roadmaps.Detail(ctx, r.ID, "fr", learner)
	require.NoError(t, err)
	assert.Equal(t, "Changed", fr.Title)
	require.NoError(t, db.Model(&models.Roadmap{}).Where("id = ?", r.ID).Update("title", "Changed twice").Error)
	fr, err = svc.Roadmaps.Detail(ctx, r.ID, "fr", learner)
	require.NoError(t, err)
	assert.Equal(t, "Changed", fr.Title)

	_, err = svc.Nodes.Create(ctx, NodeInput{RoadmapID: r.ID, Title: "Fonctions"})
	require.NoError(t, err)
	fr, err = svc.Roadmaps.Detail(ctx, r.ID, "fr", learner)
	require.NoError(t, err)
	assert.Equal(t, "Changed twice", fr.Title)
	assert.Len(t, fr.Nodes, 3)
}

func TestRoadmapDetailHidesUnpublished(t *testing.T) {
	svc, db := newServices(t)
	r := testutil.SeedRoadmap(t, db, "draft", false, nil)

	_, err := svc.Roadmaps.Detail(ctx, r.ID, "fr", learner)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Roadmaps.Detail(ctx, r.ID, "fr", admin)
	assert.NoError(t, err)
	_, err = svc.Roadmaps.Detail(ctx, 404, "fr", admin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoadmapDeleteCascades(t *testing.T) {
	svc, db := newServices(t)
	r := testutil.SeedRoadmap(t, db, "algebra", true, nil)
	n1 := testutil.SeedNode(t, db, r.ID, "a")
	n2 := testutil.SeedNode(t, db, r.ID, "b")
	testutil.SeedEdge(t, db, r.ID, n1.ID, n2.ID)
	ex := testutil.SeedExercise(t, db, "ex", models.DifficultyEasy)
	testutil.Link(t, db, n1.ID, ex.ID, 0)

	require.NoError(t, svc.Roadmaps.Delete(ctx, r.ID))
	assert.ErrorIs(t, svc.Roadmaps.Delete(ctx, r.ID), ErrNotFound)

	for _, m := range []interface{}{&models.RoadmapNode{}, &models.RoadmapEdge{}, &models.NodeExercise{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n)
	}
	var exercises int64
	require.NoError(t, db.Model(&models.Exercise{}).Count(&exercises).Error)
	assert.Equal(t, int64(1), exercises)
}

func TestSaveGraph(t *testing.T) {
	svc, db := newServices(t)
	r := testutil.SeedRoadmap(t, db, "algebra", true, nil)
	a := testutil.SeedNode(t, db, r.ID, "a")
	b := testutil.SeedNode(t, db, r.ID, "b")
	c := testutil.SeedNode(t, db, r.ID, "c")
	other := testutil.SeedRoadmap(t, db, "other", true, nil)
	foreign := testutil.SeedNode(t, db, other.ID, "x")
	testutil.SeedEdge(t, db, r.ID, a.ID, b.ID)

	edges, err := svc.Roadmaps.SaveGraph(ctx, r.ID, GraphInput{
		Nodes: []NodePosition{{ID: a.ID, PositionX: 10, PositionY: 20}},
		Edges: []EdgeLink{{a.ID, c.ID}, {c.ID, b.ID}},
	})
	require.NoError(t, err)
	assert.Len(t, edges, 2)

	var moved models.RoadmapNode
	require.NoError(t, db.First(&moved, a.ID).Error)
	assert.Equal(t, 10.0, moved.PositionX)
	assert.Equal(t, 20.0, moved.PositionY)

	order, err := svc.Roadmaps.TopologicalOrder(ctx, r.ID, learner)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, c.ID, b.ID}, order)

	_, err = svc.Roadmaps.SaveGraph(ctx, r.ID, GraphInput{Edges: []EdgeLink{{a.ID, b.ID}, {b.ID, a.ID}}})
	assert.ErrorIs(t, err, ErrCycle)
	_, err = svc.Roadmaps.SaveGraph(ctx, r.ID, GraphInput{Edges: []EdgeLink{{a.ID, foreign.ID}}})
	assert.ErrorIs(t, err, ErrInvalidEdge)
	_, err = svc.Roadmaps.SaveGraph(ctx, r.ID, GraphInput{Nodes: []NodePosition{{ID: foreign.ID}}})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	_, err = svc.Roadmaps.SaveGraph(ctx, 404, GraphInput{})
	assert.ErrorIs(t, err, ErrNotFound)

	// failed saves leave the previous edge set in place
	var count int64
	require.NoError(t, db.Model(&models.RoadmapEdge{}).Where("roadmap_id = ?", r.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
