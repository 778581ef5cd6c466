package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/authz"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStorage records presign and delete calls.
type memStorage struct {
	deleted []string
}

func (m *memStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	return "https://media.test/put/" + key + "?ct=" + contentType, nil
}

func (m *memStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://media.test/get/" + key, nil
}

func (m *memStorage) DeleteObject(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

func newWorkoutService(f *fixture, fs storage.FileStorage) WorkoutService {
	return NewWorkoutService(f.guard, nil, f.users, f.plans, f.logs, fs)
}

var legDay = []domain.Exercise{
	{Name: "Agachamento", Sets: 4, Reps: 10},
	{Name: "Leg press", Sets: 3, Reps: 12},
}

func TestUpsertWorkout(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newWorkoutService(f, nil)
	ctx := context.Background()

	first, err := svc.UpsertWorkout(ctx, f.trainer, f.student.ID, "Segunda-feira: Pernas", legDay)
	require.NoError(t, err)
	require.NotNil(t, first.Weekday)
	assert.Equal(t, 0, *first.Weekday)
	assert.Equal(t, legDay, first.Exercises)

	second, err := svc.UpsertWorkout(ctx, f.trainer, f.student.ID, "SEGUNDA - Costas", []domain.Exercise{{Name: "Remada", Sets: 3, Reps: 8}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same weekday replaces the plan")
	assert.Equal(t, "SEGUNDA - Costas", second.Title)
	require.Len(t, second.Exercises, 1)

	extra, err := svc.UpsertWorkout(ctx, f.trainer, f.student.ID, "Mobilidade", legDay)
	require.NoError(t, err)
	assert.Nil(t, extra.Weekday)

	again, err := svc.UpsertWorkout(ctx, f.trainer, f.student.ID, "Mobilidade", legDay)
	require.NoError(t, err)
	assert.NotEqual(t, extra.ID, again.ID, "titles without a weekday always insert")

	plans, err := f.plans.ListByStudent(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, plans, 3)
}

func TestUpsertWorkoutConcurrentSameWeekday(t *testing.T) {
	f := newFileFixture(t, authz.DefaultPolicy)
	svc := newWorkoutService(f, nil)
	ctx := context.Background()

	const writers = 12
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			title := fmt.Sprintf("Segunda - variação %d", i)
			_, errs[i] = svc.UpsertWorkout(ctx, f.trainer, f.student.ID, title, legDay)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}
	plans, err := f.plans.ListByStudent(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, plans, 1, "one plan per weekday")
	require.NotNil(t, plans[0].Weekday)
	assert.Equal(t, 0, *plans[0].Weekday)
}

func TestUpsertWorkoutValidation(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newWorkoutService(f, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		title     string
		exercises []domain.Exercise
		field     string
	}{
		{"no exercises", "Terça", nil, "exercises"},
		{"blank title", "  ", legDay, "title"},
		{"unnamed exercise", "Terça", []domain.Exercise{{Name: " ", Sets: 1, Reps: 1}}, "exercises[0].name"},
		{"negative reps", "Terça", []domain.Exercise{{Name: "Supino", Sets: 1, Reps: -1}}, "exercises[0].reps"},
		{"foreign media", "Terça", []domain.Exercise{{Name: "Supino", MediaURL: storage.MediaPrefix(f.otherStudent.ID) + "clip.mp4"}}, "exercises[0].mediaUrl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpsertWorkout(ctx, f.trainer, f.student.ID, tt.title, tt.exercises)
			verr := errorAs[*domain.ValidationError](t, err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	_, err := svc.UpsertWorkout(ctx, f.student, f.student.ID, "Terça", legDay)
	requireDenied(t, err, authz.ReasonUnauthorized)
	_, err = svc.UpsertWorkout(ctx, f.otherTrainer, f.student.ID, "Terça", legDay)
	requireDenied(t, err, authz.ReasonForbidden)
}

func TestUpdateAndDeleteWorkout(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newWorkoutService(f, nil)
	ctx := context.Background()

	monday, err := svc.UpsertWorkout(ctx, f.trainer, f.student.ID, "Segunda", legDay)
	require.NoError(t, err)
	friday, err := svc.UpsertWorkout(ctx, f.trainer, f.student.ID, "Sexta", legDay)
	require.NoError(t, err)

	_, err = svc.UpdateWorkout(ctx, f.trainer, friday.ID, "segunda-feira", legDay)
	verr := errorAs[*domain.ValidationError](t, err)
	assert.Contains(t, verr.Fields, "title")

	updated, err := svc.UpdateWorkout(ctx, f.trainer, friday.ID, "Sábado", legDay[:1])
	require.NoError(t, err)
	assert.Equal(t, 5, *updated.Weekday)
	assert.Len(t, updated.Exercises, 1)

	_, err = svc.UpdateWorkout(ctx, f.trainer, primitive.NewObjectID(), "Sábado", legDay)
	errorAs[*domain.NotFoundError](t, err)

	log, err := svc.CompleteWorkout(ctx, f.student, monday.ID, time.Time{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteWorkout(ctx, f.trainer, monday.ID))
	_, err = svc.GetWorkout(ctx, f.trainer, monday.ID)
	errorAs[*domain.NotFoundError](t, err)

	logs, err := svc.ListCompletions(ctx, f.trainer, f.student.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1, "completion logs outlive their plan")
	assert.Equal(t, log.ID, logs[0].ID)

	err = svc.DeleteWorkout(ctx, f.otherTrainer, friday.ID)
	errorAs[*domain.NotFoundError](t, err)
	err = svc.DeleteWorkout(ctx, f.student, friday.ID)
	requireDenied(t, err, authz.ReasonUnauthorized)
}

func TestGetWorkoutMalformedContent(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newWorkoutService(f, nil)
	ctx := context.Background()

	plan := &domain.WorkoutPlan{StudentID: f.student.ID, Title: "Quarta", Content: "{not json"}
	_, err := f.plans.Create(ctx, plan)
	require.NoError(t, err)

	_, err = svc.GetWorkout(ctx, f.student, plan.ID)
	dierr := errorAs[*domain.DataIntegrityError](t, err)
	assert.Equal(t, plan.ID.Hex(), dierr.ID)

	_, err = svc.GetWorkout(ctx, f.otherStudent, plan.ID)
	errorAs[*domain.NotFoundError](t, err)
}

func TestWeeklyScheduleAndList(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newWorkoutService(f, nil)
	ctx := context.Background()

	for _, title := range []string{"Treino livre", "Quarta - Ombro", "Segunda - Peito", "Alongamento", "Domingo"} {
		_, err := svc.UpsertWorkout(ctx, f.trainer, f.student.ID, title, legDay)
		require.NoError(t, err)
	}

	days, err := svc.WeeklySchedule(ctx, f.student, f.student.ID)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.Equal(t, "Segunda-Feira", days[0].Name)
	require.NotNil(t, days[0].Workout)
	assert.Equal(t, "Segunda - Peito", days[0].Workout.Title)
	assert.Nil(t, days[1].Workout)
	assert.Equal(t, "Quarta - Ombro", days[2].Workout.Title)
	assert.Equal(t, "Domingo", days[6].Workout.Title)
	assert.Len(t, days[6].Workout.Exercises, 2)

	plans, err := svc.ListWorkouts(ctx, f.trainer, f.student.ID)
	require.NoError(t, err)
	var titles []string
	for _, p := range plans {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"Segunda - Peito", "Quarta - Ombro", "Domingo", "Treino livre", "Alongamento"}, titles)

	_, err = svc.WeeklySchedule(ctx, f.otherTrainer, f.student.ID)
	requireDenied(t, err, authz.ReasonForbidden)
}

func TestCompleteWorkout(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newWorkoutService(f, nil)
	ctx := context.Background()

	plan, err := svc.UpsertWorkout(ctx, f.trainer, f.student.ID, "Terça", legDay)
	require.NoError(t, err)

	at := time.Date(2024, 4, 2, 18, 30, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		log, err := svc.CompleteWorkout(ctx, f.student, plan.ID, at.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, plan.ID, log.WorkoutID)
	}

	logs, err := svc.ListCompletions(ctx, f.student, f.student.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].CompletedAt.After(logs[1].CompletedAt), "newest first")

	_, err = svc.CompleteWorkout(ctx, f.trainer, plan.ID, at)
	requireDenied(t, err, authz.ReasonForbidden)
	_, err = svc.CompleteWorkout(ctx, f.otherStudent, plan.ID, at)
	errorAs[*domain.NotFoundError](t, err)
	_, err = svc.CompleteWorkout(ctx, f.student, primitive.NewObjectID(), at)
	errorAs[*domain.NotFoundError](t, err)
}

func TestPlanOfAnotherStudentLooksMissing(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := newWorkoutService(f, nil)
	ctx := context.Background()

	plan, err := svc.UpsertWorkout(ctx, f.trainer, f.student.ID, "Quinta", legDay)
	require.NoError(t, err)
	missing := primitive.NewObjectID()

	ops := map[string]func(actor domain.Actor, id primitive.ObjectID) error{
		"get": func(actor domain.Actor, id primitive.ObjectID) error {
			_, err := svc.GetWorkout(ctx, actor, id)
			return err
		},
		"update": func(actor domain.Actor, id primitive.ObjectID) error {
			_, err := svc.UpdateWorkout(ctx, actor, id, "Quinta", legDay)
			return err
		},
		"delete": func(actor domain.Actor, id primitive.ObjectID) error {
			return svc.DeleteWorkout(ctx, actor, id)
		},
		"complete": func(actor domain.Actor, id primitive.ObjectID) error {
			_, err := svc.CompleteWorkout(ctx, actor, id, time.Time{})
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			for _, actor := range []domain.Actor{f.otherStudent, f.otherTrainer} {
				foreign := op(actor, plan.ID)
				absent := op(actor, missing)
				require.Error(t, foreign)
				assert.Equal(t, absent, foreign, "foreign plan and missing plan must be indistinguishable")
				errorAs[*domain.NotFoundError](t, foreign)
			}
		})
	}

	got, err := svc.GetWorkout(ctx, f.student, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)
}

func TestMedia(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	ctx := context.Background()

	t.Run("storage not configured", func(t *testing.T) {
		svc := newWorkoutService(f, nil)
		_, err := svc.MediaUploadURL(ctx, f.trainer, f.student.ID, "video/mp4")
		assert.ErrorIs(t, err, ErrMediaUnavailable)
	})

	fs := &memStorage{}
	svc := newWorkoutService(f, fs)

	up, err := svc.MediaUploadURL(ctx, f.trainer, f.student.ID, "video/mp4")
	require.NoError(t, err)
	assert.True(t, storage.OwnsKey(f.student.ID, up.ObjectKey))
	assert.Contains(t, up.UploadURL, up.ObjectKey)

	_, err = svc.MediaUploadURL(ctx, f.trainer, f.student.ID, "application/pdf")
	verr := errorAs[*domain.ValidationError](t, err)
	assert.Contains(t, verr.Fields, "contentType")

	_, err = svc.MediaUploadURL(ctx, f.student, f.student.ID, "video/mp4")
	requireDenied(t, err, authz.ReasonUnauthorized)

	url, err := svc.MediaDownloadURL(ctx, f.student, f.student.ID, up.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/get/"+up.ObjectKey, url)

	_, err = svc.MediaDownloadURL(ctx, f.student, f.student.ID, storage.MediaPrefix(f.otherStudent.ID)+"x.mp4")
	errorAs[*domain.ValidationError](t, err)

	// the uploaded key can be referenced by the student's own plans
	_, err = svc.UpsertWorkout(ctx, f.trainer, f.student.ID, "Quinta", []domain.Exercise{{Name: "Prancha", MediaURL: up.ObjectKey}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMedia(ctx, f.trainer, f.student.ID, up.ObjectKey))
	assert.Equal(t, []string{up.ObjectKey}, fs.deleted)
}
