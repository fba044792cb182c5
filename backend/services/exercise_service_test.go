package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/testutil"
)

func TestExerciseSolutionVisibility(t *testing.T) {
	svc, db := newServices(t)
	user := testutil.SeedUser(t, db, "amina", models.RoleUser)
	ex, err := svc.Exercises.Create(ctx, ExerciseInput{
		Title: "Résoudre x+1=2", Difficulty: models.DifficultyMedium, Content: "x+1=2", Solution: "x=1",
		I18n: models.Translations{"en": {Title: "Solve x+1=2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExerciseTheory, ex.ExerciseType)

	viewer := Viewer{UserID: user.ID, Role: models.RoleUser}
	got, err := svc.Exercises.Get(ctx, ex.ID, "en", viewer)
	require.NoError(t, err)
	assert.Equal(t, "Solve x+1=2", got.Title)
	assert.Empty(t, got.Solution)

	got, err = svc.Exercises.Get(ctx, ex.ID, "fr", admin)
	require.NoError(t, err)
	assert.Equal(t, "x=1", got.Solution)

	_, err = svc.Progress.SetExerciseCompletion(ctx, user.ID, ex.ID, true, "fr")
	require.NoError(t, err)
	got, err = svc.Exercises.Get(ctx, ex.ID, "fr", viewer)
	require.NoError(t, err)
	assert.Equal(t, "x=1", got.Solution)

	_, err = svc.Exercises.Get(ctx, 404, "fr", viewer)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExerciseListFilters(t *testing.T) {
	svc, db := newServices(t)
	testutil.SeedExercise(t, db, "Limits", models.DifficultyHard)
	testutil.SeedExercise(t, db, "Fractions", models.DifficultyEasy)
	_, err := svc.Exercises.Create(ctx, ExerciseInput{Title: "Loops", ExerciseType: models.ExerciseCoding, Solution: "for {}"})
	require.NoError(t, err)

	list, total, err := svc.Exercises.List(ctx, ExerciseFilter{}, "fr")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, e := range list {
		assert.Empty(t, e.Solution)
	}

	list, _, err = svc.Exercises.List(ctx, ExerciseFilter{Type: models.ExerciseCoding}, "fr")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Loops", list[0].Title)

	list, _, err = svc.Exercises.List(ctx, ExerciseFilter{Difficulty: models.DifficultyHard, Search: "lim"}, "fr")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Limits", list[0].Title)
}

func TestExerciseDeleteRemovesLinksAndProgress(t *testing.T) {
	svc, db := newServices(t)
	user := testutil.SeedUser(t, db, "amina", models.RoleUser)
	r := testutil.SeedRoadmap(t, db, "algebra", true, nil)
	node := testutil.SeedNode(t, db, r.ID, "a")
	ex := testutil.SeedExercise(t, db, "ex", models.DifficultyEasy)
	testutil.Link(t, db, node.ID, ex.ID, 0)
	_, err := svc.Progress.SetExerciseCompletion(ctx, user.ID, ex.ID, true, "fr")
	require.NoError(t, err)

	updated, err := svc.Exercises.Update(ctx, ex.ID, ExerciseInput{Title: "renamed", Difficulty: models.DifficultyHard})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	require.NoError(t, svc.Exercises.Delete(ctx, ex.ID))
	assert.ErrorIs(t, svc.Exercises.Delete(ctx, ex.ID), ErrNotFound)

	var links, progress int64
	require.NoError(t, db.Model(&models.NodeExercise{}).Count(&links).Error)
	require.NoError(t, db.Model(&models.UserExerciseProgress{}).Count(&progress).Error)
	assert.Zero(t, links)
	assert.Zero(t, progress)
}

func TestExerciseWritesWhenRoadmapLookupFails(t *testing.T) {
	svc, db := newServices(t)
	r := testutil.SeedRoadmap(t, db, "algebra", true, nil)
	node := testutil.SeedNode(t, db, r.ID, "a")
	ex := testutil.SeedExercise(t, db, "ex", models.DifficultyEasy)
	testutil.Link(t, db, node.ID, ex.ID, 0)
	failReadsOn(t, db, "roadmap_nodes")

	// update is committed before cache invalidation, so it still succeeds
	updated, err := svc.Exercises.Update(ctx, ex.ID, ExerciseInput{Title: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	err = svc.Exercises.Delete(ctx, ex.ID)
	assert.ErrorIs(t, err, errInjected)
	var links int64
	require.NoError(t, db.Model(&models.NodeExercise{}).Count(&links).Error)
	assert.EqualValues(t, 1, links)
	require.NoError(t, db.First(&models.Exercise{}, ex.ID).Error)
}
