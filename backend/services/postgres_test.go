package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/testutil"
)

// Runs the row-locking paths against a real postgres.
func TestPostgresProgressAndGraph(t *testing.T) {
	db := testutil.Tx(t, testutil.Postgres(t))
	svc := New(db, nil, testutil.Logger(t))

	user := testutil.SeedUser(t, db, "pg_learner", models.RoleUser)
	roadmap := testutil.SeedRoadmap(t, db, "pg-roadmap", true, nil)
	a := testutil.SeedNode(t, db, roadmap.ID, "A")
	b := testutil.SeedNode(t, db, roadmap.ID, "B")
	ex1 := testutil.SeedExercise(t, db, "pg-ex-1", models.DifficultyEasy)
	ex2 := testutil.SeedExercise(t, db, "pg-ex-2", models.DifficultyMedium)

	_, err := svc.Nodes.AttachExercise(ctx, a.ID, ex1.ID, nil)
	require.NoError(t, err)
	_, err = svc.Nodes.AttachExercise(ctx, a.ID, ex2.ID, nil)
	require.NoError(t, err)
	links, err := svc.Nodes.ReorderExercises(ctx, a.ID, []uint{ex2.ID, ex1.ID})
	require.NoError(t, err)
	assert.Equal(t, ex2.ID, links[0].ExerciseID)

	_, err = svc.Edges.Create(ctx, EdgeInput{RoadmapID: roadmap.ID, SourceNodeID: a.ID, TargetNodeID: b.ID})
	require.NoError(t, err)
	_, err = svc.Edges.Create(ctx, EdgeInput{RoadmapID: roadmap.ID, SourceNodeID: b.ID, TargetNodeID: a.ID})
	assert.ErrorIs(t, err, ErrCycle)

	res, err := svc.Progress.SetExerciseCompletion(ctx, user.ID, ex1.ID, true, "fr")
	require.NoError(t, err)
	assert.Equal(t, 10, res.XPGained)
	res, err = svc.Progress.SetExerciseCompletion(ctx, user.ID, ex1.ID, true, "fr")
	require.NoError(t, err)
	assert.Zero(t, res.XPGained)

	progress, err := svc.Progress.RoadmapProgress(ctx, Viewer{UserID: user.ID, Role: models.RoleUser}, roadmap.ID, "fr")
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Percent)
}

// Opposite edges written concurrently must not both land: the roadmap row
// lock serializes the cycle check.
func TestPostgresConcurrentOppositeEdges(t *testing.T) {
	db := testutil.Postgres(t)
	svc := New(db, nil, testutil.Logger(t))

	roadmap := testutil.SeedRoadmap(t, db, "pg-race-"+uuid.NewString(), true, nil)
	t.Cleanup(func() {
		db.Where("roadmap_id = ?", roadmap.ID).Delete(&models.RoadmapEdge{})
		db.Where("roadmap_id = ?", roadmap.ID).Delete(&models.RoadmapNode{})
		db.Delete(&models.Roadmap{}, roadmap.ID)
	})

	for round := 0; round < 10; round++ {
		a := testutil.SeedNode(t, db, roadmap.ID, fmt.Sprintf("A%d", round))
		b := testutil.SeedNode(t, db, roadmap.ID, fmt.Sprintf("B%d", round))

		inputs := []EdgeInput{
			{RoadmapID: roadmap.ID, SourceNodeID: a.ID, TargetNodeID: b.ID},
			{RoadmapID: roadmap.ID, SourceNodeID: b.ID, TargetNodeID: a.ID},
		}
		errs := make([]error, len(inputs))
		start := make(chan struct{})
		var wg sync.WaitGroup
		for i, in := range inputs {
			wg.Add(1)
			go func(i int, in EdgeInput) {
				defer wg.Done()
				<-start
				_, errs[i] = svc.Edges.Create(ctx, in)
			}(i, in)
		}
		close(start)
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.ErrorIs(t, err, ErrCycle)
		}
		require.Equal(t, 1, ok, "round %d", round)
	}

	var edges int64
	require.NoError(t, db.Model(&models.RoadmapEdge{}).Where("roadmap_id = ?", roadmap.ID).Count(&edges).Error)
	assert.EqualValues(t, 10, edges)
}
