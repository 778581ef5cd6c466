package service

import (
	"alcyxob/fitness-coach/internal/authz"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/schedule"
	"alcyxob/fitness-coach/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMediaUnavailable = errors.New("media storage is not configured")
	ErrUploadURLError   = errors.New("failed to generate upload URL")
	ErrDownloadURLError = errors.New("failed to generate download URL")
)

// WorkoutDetails is a plan with its decoded exercise list.
type WorkoutDetails struct {
	domain.WorkoutPlan
	Exercises []domain.Exercise `json:"exercises"`
}

// ScheduleDay is one slot of the weekly schedule. Workout is nil on rest days.
type ScheduleDay struct {
	Weekday int             `json:"weekday"`
	Name    string          `json:"name"`
	Workout *WorkoutDetails `json:"workout"`
}

// UploadURLResponse structure for returning URL and object key
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // goes into an exercise mediaUrl
}

type WorkoutService interface {
	UpsertWorkout(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID, title string, exercises []domain.Exercise) (*WorkoutDetails, error)
	UpdateWorkout(ctx context.Context, actor domain.Actor, planID primitive.ObjectID, title string, exercises []domain.Exercise) (*WorkoutDetails, error)
	DeleteWorkout(ctx context.Context, actor domain.Actor, planID primitive.ObjectID) error
	GetWorkout(ctx context.Context, actor domain.Actor, planID primitive.ObjectID) (*WorkoutDetails, error)
	WeeklySchedule(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) ([]ScheduleDay, error)
	ListWorkouts(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) ([]domain.WorkoutPlan, error)

	CompleteWorkout(ctx context.Context, actor domain.Actor, planID primitive.ObjectID, at time.Time) (*domain.WorkoutLog, error)
	ListCompletions(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) ([]domain.WorkoutLog, error)

	MediaUploadURL(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	MediaDownloadURL(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID, objectKey string) (string, error)
	DeleteMedia(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID, objectKey string) error
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	guard       *authz.Guard
	resolver    *schedule.Resolver
	userRepo    repository.UserRepository
	planRepo    repository.WorkoutPlanRepository
	logRepo     repository.WorkoutLogRepository
	fileStorage storage.FileStorage // nil disables media operations
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	guard *authz.Guard,
	resolver *schedule.Resolver,
	userRepo repository.UserRepository,
	planRepo repository.WorkoutPlanRepository,
	logRepo repository.WorkoutLogRepository,
	fileStorage storage.FileStorage,
) WorkoutService {
	if resolver == nil {
		resolver = schedule.Default
	}
	return &workoutService{
		guard:       guard,
		resolver:    resolver,
		userRepo:    userRepo,
		planRepo:    planRepo,
		logRepo:     logRepo,
		fileStorage: fileStorage,
	}
}

type workoutInput struct {
	Title     string            `json:"title" validate:"required,max=120"`
	Exercises []domain.Exercise `json:"exercises" validate:"required,min=1,dive"`
}

// buildPlan validates the input and returns a plan carrying the encoded
// exercises and the weekday resolved from the title.
func (s *workoutService) buildPlan(studentID primitive.ObjectID, title string, exercises []domain.Exercise) (*domain.WorkoutPlan, error) {
	in := workoutInput{Title: strings.TrimSpace(title), Exercises: append([]domain.Exercise(nil), exercises...)}
	for i := range in.Exercises {
		in.Exercises[i].Name = strings.TrimSpace(in.Exercises[i].Name)
		in.Exercises[i].MediaURL = strings.TrimSpace(in.Exercises[i].MediaURL)
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	for i, ex := range in.Exercises {
		if strings.HasPrefix(ex.MediaURL, "students/") && !storage.OwnsKey(studentID, ex.MediaURL) {
			return nil, domain.NewValidationError(fmt.Sprintf("exercises[%d].mediaUrl", i), "must reference this student's media")
		}
	}

	content, err := domain.EncodeExercises(in.Exercises)
	if err != nil {
		return nil, domain.NewValidationError("exercises", err.Error())
	}
	plan := &domain.WorkoutPlan{StudentID: studentID, Title: in.Title, Content: content}
	if day, ok := s.resolver.WeekdayOf(in.Title); ok {
		d := int(day)
		plan.Weekday = &d
	}
	return plan, nil
}

// === Plans ===

// UpsertWorkout stores a plan. A title naming a weekday replaces the student's
// plan for that weekday; any other title adds a new plan.
func (s *workoutService) UpsertWorkout(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID, title string, exercises []domain.Exercise) (*WorkoutDetails, error) {
	req := authz.Request{Actor: actor, Action: authz.Create, Resource: authz.WorkoutPlan, OwnerID: studentID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return nil, err
	}
	if _, err := loadStudent(ctx, s.userRepo, studentID); err != nil {
		return nil, err
	}
	plan, err := s.buildPlan(studentID, title, exercises)
	if err != nil {
		return nil, err
	}

	if plan.Weekday != nil {
		stored, err := s.planRepo.UpsertByWeekday(ctx, plan)
		if err != nil {
			return nil, storeError("upsert workout", err)
		}
		return details(stored)
	}
	if _, err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, storeError("create workout", err)
	}
	return details(plan)
}

func (s *workoutService) UpdateWorkout(ctx context.Context, actor domain.Actor, planID primitive.ObjectID, title string, exercises []domain.Exercise) (*WorkoutDetails, error) {
	existing, err := s.loadPlan(ctx, actor, authz.Update, planID)
	if err != nil {
		return nil, err
	}
	plan, err := s.buildPlan(existing.StudentID, title, exercises)
	if err != nil {
		return nil, err
	}
	plan.ID = existing.ID
	plan.CreatedAt = existing.CreatedAt

	if err := s.planRepo.Update(ctx, plan); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, domain.NewValidationError("title", "another workout already uses this weekday")
		case errors.Is(err, repository.ErrNotFound):
			return nil, &domain.NotFoundError{Entity: "workout"}
		}
		return nil, storeError("update workout", err)
	}
	return details(plan)
}

// DeleteWorkout removes the plan. Its completion logs are kept.
func (s *workoutService) DeleteWorkout(ctx context.Context, actor domain.Actor, planID primitive.ObjectID) error {
	if _, err := s.loadPlan(ctx, actor, authz.Delete, planID); err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, planID); err != nil {
		return repoError("delete workout", "workout", err)
	}
	return nil
}

func (s *workoutService) GetWorkout(ctx context.Context, actor domain.Actor, planID primitive.ObjectID) (*WorkoutDetails, error) {
	plan, err := s.loadPlan(ctx, actor, authz.Read, planID)
	if err != nil {
		return nil, err
	}
	return details(plan)
}

// WeeklySchedule returns seven days, Monday first.
func (s *workoutService) WeeklySchedule(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) ([]ScheduleDay, error) {
	plans, err := s.studentPlans(ctx, actor, studentID)
	if err != nil {
		return nil, err
	}
	week := s.resolver.Bind(plans)
	days := make([]ScheduleDay, 0, len(week))
	for _, slot := range week {
		day := ScheduleDay{Weekday: int(slot.Weekday), Name: slot.Name}
		if !slot.Empty() {
			if day.Workout, err = details(slot.Plan); err != nil {
				return nil, err
			}
		}
		days = append(days, day)
	}
	return days, nil
}

// ListWorkouts returns the student's plans in weekday order; plans whose
// titles name no weekday come last in creation order.
func (s *workoutService) ListWorkouts(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	plans, err := s.studentPlans(ctx, actor, studentID)
	if err != nil {
		return nil, err
	}
	return s.resolver.Sort(plans), nil
}

// === Completions ===

// CompleteWorkout appends a completion log. Completing the same plan again is allowed.
func (s *workoutService) CompleteWorkout(ctx context.Context, actor domain.Actor, planID primitive.ObjectID, at time.Time) (*domain.WorkoutLog, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, repoError("get workout", "workout", err)
	}
	if err := s.authorizePlan(ctx, actor, authz.Create, authz.WorkoutCompletionLog, plan); err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = time.Now()
	}
	log := &domain.WorkoutLog{StudentID: plan.StudentID, WorkoutID: plan.ID, CompletedAt: at.UTC()}
	if _, err := s.logRepo.Create(ctx, log); err != nil {
		return nil, storeError("create workout log", err)
	}
	return log, nil
}

func (s *workoutService) ListCompletions(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	req := authz.Request{Actor: actor, Action: authz.Read, Resource: authz.WorkoutCompletionLog, OwnerID: studentID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return nil, err
	}
	logs, err := s.logRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeError("list workout logs", err)
	}
	return logs, nil
}

// === Media ===

// MediaUploadURL presigns a PUT for a new demonstration clip or picture.
func (s *workoutService) MediaUploadURL(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if err := s.authorizeMedia(ctx, actor, authz.Update, studentID); err != nil {
		return nil, err
	}
	objectKey, err := storage.NewMediaKey(studentID, contentType)
	if err != nil {
		return nil, domain.NewValidationError("contentType", "must be a video or image type")
	}
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadURLError, err)
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

func (s *workoutService) MediaDownloadURL(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID, objectKey string) (string, error) {
	if err := s.authorizeMedia(ctx, actor, authz.Read, studentID); err != nil {
		return "", err
	}
	if !storage.OwnsKey(studentID, objectKey) {
		return "", domain.NewValidationError("key", "must reference this student's media")
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownloadURLError, err)
	}
	return url, nil
}

func (s *workoutService) DeleteMedia(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID, objectKey string) error {
	if err := s.authorizeMedia(ctx, actor, authz.Update, studentID); err != nil {
		return err
	}
	if !storage.OwnsKey(studentID, objectKey) {
		return domain.NewValidationError("key", "must reference this student's media")
	}
	if err := s.fileStorage.DeleteObject(ctx, objectKey); err != nil {
		return storeError("delete media", err)
	}
	return nil
}

// --- helpers ---

func (s *workoutService) authorizeMedia(ctx context.Context, actor domain.Actor, action authz.Action, studentID primitive.ObjectID) error {
	req := authz.Request{Actor: actor, Action: action, Resource: authz.WorkoutPlan, OwnerID: studentID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return err
	}
	if s.fileStorage == nil {
		return ErrMediaUnavailable
	}
	return nil
}

// loadPlan fetches the plan and authorizes action against its owner.
func (s *workoutService) loadPlan(ctx context.Context, actor domain.Actor, action authz.Action, planID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, repoError("get workout", "workout", err)
	}
	if err := s.authorizePlan(ctx, actor, action, authz.WorkoutPlan, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// authorizePlan checks action on resource for the owner of plan. An actor
// who may not even read the plan gets the NotFoundError a missing id gives,
// so plan ids of other students cannot be told apart from unused ones.
func (s *workoutService) authorizePlan(ctx context.Context, actor domain.Actor, action authz.Action, resource authz.Resource, plan *domain.WorkoutPlan) error {
	err := authorize(ctx, s.guard, authz.Request{Actor: actor, Action: action, Resource: resource, OwnerID: plan.StudentID})
	var denied *domain.AuthorizationError
	if !errors.As(err, &denied) {
		return err
	}
	if action != authz.Read || resource != authz.WorkoutPlan {
		read := authz.Request{Actor: actor, Action: authz.Read, Resource: authz.WorkoutPlan, OwnerID: plan.StudentID}
		switch rerr := authorize(ctx, s.guard, read); {
		case rerr == nil:
			return err
		case !errors.As(rerr, &denied):
			return rerr
		}
	}
	return &domain.NotFoundError{Entity: "workout"}
}

func (s *workoutService) studentPlans(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	req := authz.Request{Actor: actor, Action: authz.Read, Resource: authz.WorkoutPlan, OwnerID: studentID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return nil, err
	}
	plans, err := s.planRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeError("list workouts", err)
	}
	return plans, nil
}

func details(plan *domain.WorkoutPlan) (*WorkoutDetails, error) {
	exercises, err := plan.DecodeExercises()
	if err != nil {
		return nil, err
	}
	return &WorkoutDetails{WorkoutPlan: *plan, Exercises: exercises}, nil
}
