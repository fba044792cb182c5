package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/testutil"
)

func TestNodeCRUD(t *testing.T) {
	svc, db := newServices(t)
	r := testutil.SeedRoadmap(t, db, "algebra", true, nil)

	_, err := svc.Nodes.Create(ctx, NodeInput{RoadmapID: 404, Title: "orphan"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "roadmap_id")

	node, err := svc.Nodes.Create(ctx, NodeInput{
		RoadmapID: r.ID, Title: "Nombres", PositionX: 1, PositionY: 2,
		I18n: models.Translations{"en": {Title: "Numbers"}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.NodeTopic, node.NodeType)

	got, err := svc.Nodes.Get(ctx, node.ID, "en", learner)
	require.NoError(t, err)
	assert.Equal(t, "Numbers", got.Title)

	updated, err := svc.Nodes.Update(ctx, node.ID, NodeInput{RoadmapID: 999, Title: "Entiers", NodeType: models.NodeMilestone})
	require.NoError(t, err)
	assert.Equal(t, r.ID, updated.RoadmapID)
	assert.Equal(t, models.NodeMilestone, updated.NodeType)

	_, err = svc.Nodes.Get(ctx, 404, "fr", learner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNodeDeleteRemovesEdgesAndLinks(t *testing.T) {
	svc, db := newServices(t)
	r := testutil.SeedRoadmap(t, db, "algebra", true, nil)
	a := testutil.SeedNode(t, db, r.ID, "a")
	b := testutil.SeedNode(t, db, r.ID, "b")
	c := testutil.SeedNode(t, db, r.ID, "c")
	testutil.SeedEdge(t, db, r.ID, a.ID, b.ID)
	testutil.SeedEdge(t, db, r.ID, b.ID, c.ID)
	ex := testutil.SeedExercise(t, db, "ex", models.DifficultyEasy)
	testutil.Link(t, db, b.ID, ex.ID, 0)

	require.NoError(t, svc.Nodes.Delete(ctx, b.ID))
	assert.ErrorIs(t, svc.Nodes.Delete(ctx, b.ID), ErrNotFound)

	var edges, links int64
	require.NoError(t, db.Model(&models.RoadmapEdge{}).Count(&edges).Error)
	require.NoError(t, db.Model(&models.NodeExercise{}).Count(&links).Error)
	assert.Zero(t, edges)
	assert.Zero(t, links)
}

func TestAttachExercise(t *testing.T) {
	svc, db := newServices(t)
	r := testutil.SeedRoadmap(t, db, "algebra", true, nil)
	node := testutil.SeedNode(t, db, r.ID, "a")
	ex1 := testutil.SeedExercise(t, db, "one", models.DifficultyEasy)
	ex2 := testutil.SeedExercise(t, db, "two", models.DifficultyHard)
	ex3 := testutil.SeedExercise(t, db, "three", models.DifficultyHard)

	link, err := svc.Nodes.AttachExercise(ctx, node.ID, ex1.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, link.OrderIndex)
	assert.Empty(t, link.Exercise.Solution)

	link, err = svc.Nodes.AttachExercise(ctx, node.ID, ex2.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, link.OrderIndex)

	link, err = svc.Nodes.AttachExercise(ctx, node.ID, ex3.ID, intPtr(7))
	require.NoError(t, err)
	assert.Equal(t, 7, link.OrderIndex)

	_, err = svc.Nodes.AttachExercise(ctx, node.ID, ex1.ID, nil)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Nodes.AttachExercise(ctx, node.ID, 404, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "exercise_id")

	_, err = svc.Nodes.AttachExercise(ctx, 404, ex1.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Nodes.DetachExercise(ctx, node.ID, ex2.ID))
	assert.ErrorIs(t, svc.Nodes.DetachExercise(ctx, node.ID, ex2.ID), ErrNotFound)
}

func TestReorderExercises(t *testing.T) {
	svc, db := newServices(t)
	r := testutil.SeedRoadmap(t, db, "algebra", true, nil)
	node := testutil.SeedNode(t, db, r.ID, "a")
	ex1 := testutil.SeedExercise(t, db, "one", models.DifficultyEasy)
	ex2 := testutil.SeedExercise(t, db, "two", models.DifficultyEasy)
	ex3 := testutil.SeedExercise(t, db, "three", models.DifficultyEasy)
	testutil.Link(t, db, node.ID, ex1.ID, 0)
	testutil.Link(t, db, node.ID, ex2.ID, 1)
	testutil.Link(t, db, node.ID, ex3.ID, 2)

	links, err := svc.Nodes.ReorderExercises(ctx, node.ID, []uint{ex3.ID, ex1.ID, ex2.ID})
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, ex3.ID, links[0].ExerciseID)
	assert.Equal(t, 0, links[0].OrderIndex)

	got, err := svc.Nodes.Get(ctx, node.ID, "fr", learner)
	require.NoError(t, err)
	order := []uint{}
	for _, l := range got.Exercises {
		order = append(order, l.ExerciseID)
	}
	assert.Equal(t, []uint{ex3.ID, ex1.ID, ex2.ID}, order)

	for _, bad := range [][]uint{
		{ex1.ID, ex2.ID},
		{ex1.ID, ex1.ID, ex2.ID},
		{ex1.ID, ex2.ID, 404},
	} {
		_, err := svc.Nodes.ReorderExercises(ctx, node.ID, bad)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "%v", bad)
	}
}

func TestNodeGetHidesDraftRoadmaps(t *testing.T) {
	svc, db := newServices(t)
	draft := testutil.SeedRoadmap(t, db, "draft", false, nil)
	node := testutil.SeedNode(t, db, draft.ID, "hidden")

	_, err := svc.Nodes.Get(ctx, node.ID, "fr", learner)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Nodes.Get(ctx, node.ID, "fr", Viewer{})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Nodes.Get(ctx, node.ID, "fr", admin)
	require.NoError(t, err)
	assert.Equal(t, node.ID, got.ID)
}
