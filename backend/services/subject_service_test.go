package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/testutil"
)

func TestSubjectDeleteDetachesRoadmaps(t *testing.T) {
	svc, db := newServices(t)
	subject := testutil.SeedSubject(t, db, "mathematics")
	r := testutil.SeedRoadmap(t, db, "algebra", true, &subject.ID)

	require.NoError(t, svc.Subjects.Delete(ctx, subject.ID))
	assert.ErrorIs(t, svc.Subjects.Delete(ctx, subject.ID), ErrNotFound)

	var got models.Roadmap
	require.NoError(t, db.First(&got, r.ID).Error)
	assert.Nil(t, got.SubjectID)
}

func TestSubjectWritesWhenRoadmapLookupFails(t *testing.T) {
	svc, db := newServices(t)
	subject := testutil.SeedSubject(t, db, "mathematics")
	r := testutil.SeedRoadmap(t, db, "algebra", true, &subject.ID)
	failReadsOn(t, db, "roadmaps")

	updated, err := svc.Subjects.Update(ctx, subject.ID, SubjectInput{Slug: "maths", Title: "Maths"})
	require.NoError(t, err)
	assert.Equal(t, "maths", updated.Slug)

	err = svc.Subjects.Delete(ctx, subject.ID)
	assert.ErrorIs(t, err, errInjected)
	require.NoError(t, db.First(&models.Subject{}, subject.ID).Error)

	var subjectID *uint
	require.NoError(t, db.Model(&models.Roadmap{}).Where("id = ?", r.ID).Select("subject_id").Row().Scan(&subjectID))
	require.NotNil(t, subjectID)
	assert.Equal(t, subject.ID, *subjectID)
}
