package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/authz"
	"alcyxob/fitness-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTrainerService(f *fixture) TrainerService {
	return NewTrainerService(f.guard, f.users, f.links, f.assessments, f.plans, f.logs)
}

func TestCreateStudentLinksToTrainer(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newTrainerService(f)
	ctx := context.Background()

	created, err := svc.CreateStudent(ctx, f.otherTrainer, "Caio", "caio@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, created.Role)

	linked, err := f.links.IsLinked(ctx, f.otherTrainer.ID, created.ID)
	require.NoError(t, err)
	assert.True(t, linked)

	_, err = svc.CreateStudent(ctx, f.student, "Dani", "dani@example.com", "secret1")
	requireDenied(t, err, authz.ReasonUnauthorized)
}

func TestLinkStudent(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newTrainerService(f)
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		created, err := svc.LinkStudent(ctx, f.otherTrainer, f.otherStudent.ID)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = svc.LinkStudent(ctx, f.otherTrainer, f.otherStudent.ID)
		require.NoError(t, err)
		assert.False(t, created)

		ids, err := f.links.StudentIDs(ctx, f.otherTrainer.ID)
		require.NoError(t, err)
		assert.Len(t, ids, 1)
	})

	t.Run("target must be a student", func(t *testing.T) {
		_, err := svc.LinkStudent(ctx, f.trainer, f.otherTrainer.ID)
		verr := errorAs[*domain.ValidationError](t, err)
		assert.Contains(t, verr.Fields, "studentId")
	})

	t.Run("missing student", func(t *testing.T) {
		_, err := svc.LinkStudent(ctx, f.trainer, primitive.NewObjectID())
		nf := errorAs[*domain.NotFoundError](t, err)
		assert.Equal(t, "student", nf.Entity)
	})

	t.Run("students cannot link", func(t *testing.T) {
		_, err := svc.LinkStudent(ctx, f.student, f.otherStudent.ID)
		requireDenied(t, err, authz.ReasonUnauthorized)
	})
}

func TestUnlinkStudent(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newTrainerService(f)
	ctx := context.Background()

	require.NoError(t, svc.UnlinkStudent(ctx, f.trainer, f.student.ID))
	require.NoError(t, svc.UnlinkStudent(ctx, f.trainer, f.student.ID), "unlinking twice is a no-op")

	students, err := svc.ListStudents(ctx, f.trainer)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestListStudents(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newTrainerService(f)
	ctx := context.Background()

	students, err := svc.ListStudents(ctx, f.trainer)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, f.student.ID, students[0].ID)
	assert.Empty(t, students[0].PasswordHash)

	_, err = svc.ListStudents(ctx, f.student)
	requireDenied(t, err, authz.ReasonUnauthorized)
}

func TestSearchStudents(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newTrainerService(f)
	ctx := context.Background()

	matches, err := svc.SearchStudents(ctx, f.trainer, "a")
	require.NoError(t, err)
	assert.Empty(t, matches, "single-character queries return nothing")

	matches, err = svc.SearchStudents(ctx, f.otherTrainer, "example.com")
	require.NoError(t, err)
	require.Len(t, matches, 2, "trainers are never returned")

	byName := map[string]StudentMatch{}
	for _, m := range matches {
		byName[m.Student.Name] = m
	}
	assert.False(t, byName["Ana Souza"].IsLinked)
	assert.True(t, byName["Ana Souza"].HasTrainers)
	assert.False(t, byName["Bruno Lima"].IsLinked)
	assert.False(t, byName["Bruno Lima"].HasTrainers)

	matches, err = svc.SearchStudents(ctx, f.trainer, "SOUZA")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].IsLinked)

	_, err = svc.SearchStudents(ctx, f.student, "souza")
	requireDenied(t, err, authz.ReasonUnauthorized)
}

func TestDashboardAndTimeline(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newTrainerService(f)
	ctx := context.Background()
	now := time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)

	_, err := f.assessments.Create(ctx, &domain.Assessment{StudentID: f.student.ID, Date: now, Sex: domain.SexMale})
	require.NoError(t, err)
	_, err = f.assessments.Create(ctx, &domain.Assessment{StudentID: f.otherStudent.ID, Date: now, Sex: domain.SexMale})
	require.NoError(t, err)

	kept := &domain.WorkoutPlan{StudentID: f.student.ID, Title: "Segunda - Peito", Content: "[]"}
	_, err = f.plans.Create(ctx, kept)
	require.NoError(t, err)
	gone := &domain.WorkoutPlan{StudentID: f.student.ID, Title: "Extra", Content: "[]"}
	_, err = f.plans.Create(ctx, gone)
	require.NoError(t, err)

	logs := []domain.WorkoutLog{
		{StudentID: f.student.ID, WorkoutID: kept.ID, CompletedAt: now.Add(-24 * time.Hour)}, // yesterday
		{StudentID: f.student.ID, WorkoutID: kept.ID, CompletedAt: now.Add(-2 * time.Hour)},
		{StudentID: f.student.ID, WorkoutID: gone.ID, CompletedAt: now.Add(-time.Hour)},
		{StudentID: f.otherStudent.ID, WorkoutID: kept.ID, CompletedAt: now.Add(-time.Hour)}, // not linked
	}
	for i := range logs {
		_, err := f.logs.Create(ctx, &logs[i])
		require.NoError(t, err)
	}
	require.NoError(t, f.plans.Delete(ctx, gone.ID))

	stats, err := svc.Dashboard(ctx, f.trainer, now)
	require.NoError(t, err)
	assert.Equal(t, &DashboardStats{TotalStudents: 1, TotalAssessments: 1, WorkoutsCompletedToday: 2}, stats)

	entries, err := svc.Timeline(ctx, f.trainer, now)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, defaultWorkoutTitle, entries[0].WorkoutTitle, "deleted plan falls back to the default title")
	assert.Equal(t, "Segunda - Peito", entries[1].WorkoutTitle)
	assert.Equal(t, "Ana Souza", entries[0].StudentName)

	entries, err = svc.Timeline(ctx, f.otherTrainer, now)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)

	_, err = svc.Dashboard(ctx, f.student, now)
	requireDenied(t, err, authz.ReasonUnauthorized)
}
