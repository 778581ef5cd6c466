package service

import (
	"alcyxob/fitness-coach/internal/authz"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	minSearchQueryLen = 2
	maxSearchResults  = 10
	// defaultWorkoutTitle labels timeline entries whose plan was deleted.
	defaultWorkoutTitle = "Treino"
)

// StudentMatch is a search hit seen from the searching trainer.
type StudentMatch struct {
	Student     domain.User `json:"student"`
	IsLinked    bool        `json:"isLinked"`
	HasTrainers bool        `json:"hasTrainers"`
}

// DashboardStats summarises a trainer's roster.
type DashboardStats struct {
	TotalStudents          int   `json:"totalStudents"`
	TotalAssessments       int64 `json:"totalAssessments"`
	WorkoutsCompletedToday int64 `json:"workoutsCompletedToday"`
}

// TimelineEntry is one completion shown on the trainer's activity feed.
type TimelineEntry struct {
	LogID        primitive.ObjectID `json:"logId"`
	StudentID    primitive.ObjectID `json:"studentId"`
	StudentName  string             `json:"studentName"`
	WorkoutID    primitive.ObjectID `json:"workoutId"`
	WorkoutTitle string             `json:"workoutTitle"`
	CompletedAt  time.Time          `json:"completedAt"`
}

type TrainerService interface {
	CreateStudent(ctx context.Context, actor domain.Actor, name, email, password string) (*domain.User, error)
	LinkStudent(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) (created bool, err error)
	UnlinkStudent(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) error
	ListStudents(ctx context.Context, actor domain.Actor) ([]domain.User, error)
	SearchStudents(ctx context.Context, actor domain.Actor, query string) ([]StudentMatch, error)
	Dashboard(ctx context.Context, actor domain.Actor, now time.Time) (*DashboardStats, error)
	Timeline(ctx context.Context, actor domain.Actor, now time.Time) ([]TimelineEntry, error)
}

// trainerService implements the TrainerService interface.
type trainerService struct {
	guard          *authz.Guard
	userRepo       repository.UserRepository
	linkRepo       repository.LinkRepository
	assessmentRepo repository.AssessmentRepository
	planRepo       repository.WorkoutPlanRepository
	logRepo        repository.WorkoutLogRepository
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(
	guard *authz.Guard,
	userRepo repository.UserRepository,
	linkRepo repository.LinkRepository,
	assessmentRepo repository.AssessmentRepository,
	planRepo repository.WorkoutPlanRepository,
	logRepo repository.WorkoutLogRepository,
) TrainerService {
	return &trainerService{
		guard:          guard,
		userRepo:       userRepo,
		linkRepo:       linkRepo,
		assessmentRepo: assessmentRepo,
		planRepo:       planRepo,
		logRepo:        logRepo,
	}
}

// === Roster ===

// CreateStudent registers a student account on the trainer's behalf and links it.
func (s *trainerService) CreateStudent(ctx context.Context, actor domain.Actor, name, email, password string) (*domain.User, error) {
	if err := authorize(ctx, s.guard, authz.Request{Actor: actor, Action: authz.Create, Resource: authz.Identity}); err != nil {
		return nil, err
	}
	student, err := createAccount(ctx, s.userRepo, accountInput{
		Name: name, Email: email, Password: password, Role: string(domain.RoleStudent),
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.linkRepo.Link(ctx, actor.ID, student.ID); err != nil {
		return nil, storeError("link student", err)
	}
	return student, nil
}

// LinkStudent is idempotent: linking an already linked student succeeds with created=false.
func (s *trainerService) LinkStudent(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) (bool, error) {
	req := authz.Request{Actor: actor, Action: authz.Create, Resource: authz.TrainerStudentLink, OwnerID: studentID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return false, err
	}
	if _, err := loadStudent(ctx, s.userRepo, studentID); err != nil {
		return false, err
	}
	created, err := s.linkRepo.Link(ctx, actor.ID, studentID)
	if err != nil {
		return false, storeError("link student", err)
	}
	return created, nil
}

func (s *trainerService) UnlinkStudent(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) error {
	req := authz.Request{Actor: actor, Action: authz.Delete, Resource: authz.TrainerStudentLink, OwnerID: studentID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return err
	}
	if err := s.linkRepo.Unlink(ctx, actor.ID, studentID); err != nil {
		return storeError("unlink student", err)
	}
	return nil
}

func (s *trainerService) ListStudents(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	ids, err := s.rosterIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	students, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("get students", err)
	}
	for i := range students {
		students[i].PasswordHash = ""
	}
	return students, nil
}

// SearchStudents finds student accounts by name or email. Queries shorter
// than two characters return nothing.
func (s *trainerService) SearchStudents(ctx context.Context, actor domain.Actor, query string) ([]StudentMatch, error) {
	linked, err := s.rosterIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchQueryLen {
		return []StudentMatch{}, nil
	}

	users, err := s.userRepo.Search(ctx, query, domain.RoleStudent, maxSearchResults)
	if err != nil {
		return nil, storeError("search students", err)
	}

	mine := make(map[primitive.ObjectID]bool, len(linked))
	for _, id := range linked {
		mine[id] = true
	}

	matches := make([]StudentMatch, 0, len(users))
	for _, u := range users {
		u.PasswordHash = ""
		m := StudentMatch{Student: u, IsLinked: mine[u.ID], HasTrainers: mine[u.ID]}
		if !m.HasTrainers {
			trainers, err := s.linkRepo.TrainerIDs(ctx, u.ID)
			if err != nil {
				return nil, storeError("get student trainers", err)
			}
			m.HasTrainers = len(trainers) > 0
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// === Overview ===

// Dashboard counts over the trainer's linked students. "Today" starts at
// local midnight of now.
func (s *trainerService) Dashboard(ctx context.Context, actor domain.Actor, now time.Time) (*DashboardStats, error) {
	ids, err := s.rosterIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	assessments, err := s.assessmentRepo.CountByStudents(ctx, ids)
	if err != nil {
		return nil, storeError("count assessments", err)
	}
	completed, err := s.logRepo.CountSince(ctx, ids, StartOfDay(now))
	if err != nil {
		return nil, storeError("count completions", err)
	}
	return &DashboardStats{
		TotalStudents:          len(ids),
		TotalAssessments:       assessments,
		WorkoutsCompletedToday: completed,
	}, nil
}

// Timeline lists today's completions by linked students, newest first.
func (s *trainerService) Timeline(ctx context.Context, actor domain.Actor, now time.Time) ([]TimelineEntry, error) {
	ids, err := s.rosterIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	logs, err := s.logRepo.ListSince(ctx, ids, StartOfDay(now))
	if err != nil {
		return nil, storeError("list completions", err)
	}
	if len(logs) == 0 {
		return []TimelineEntry{}, nil
	}

	students, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("get students", err)
	}
	names := make(map[primitive.ObjectID]string, len(students))
	for _, u := range students {
		names[u.ID] = u.Name
	}

	planIDs := make([]primitive.ObjectID, 0, len(logs))
	seen := make(map[primitive.ObjectID]bool, len(logs))
	for _, l := range logs {
		if !seen[l.WorkoutID] {
			seen[l.WorkoutID] = true
			planIDs = append(planIDs, l.WorkoutID)
		}
	}
	plans, err := s.planRepo.GetByIDs(ctx, planIDs)
	if err != nil {
		return nil, storeError("get workouts", err)
	}
	titles := make(map[primitive.ObjectID]string, len(plans))
	for _, p := range plans {
		titles[p.ID] = p.Title
	}

	entries := make([]TimelineEntry, len(logs))
	for i, l := range logs {
		title, ok := titles[l.WorkoutID]
		if !ok {
			title = defaultWorkoutTitle
		}
		entries[i] = TimelineEntry{
			LogID:        l.ID,
			StudentID:    l.StudentID,
			StudentName:  names[l.StudentID],
			WorkoutID:    l.WorkoutID,
			WorkoutTitle: title,
			CompletedAt:  l.CompletedAt,
		}
	}
	return entries, nil
}

// rosterIDs authorizes a trainer-only read of the actor's own links and
// returns the linked student IDs.
func (s *trainerService) rosterIDs(ctx context.Context, actor domain.Actor) ([]primitive.ObjectID, error) {
	req := authz.Request{Actor: actor, Action: authz.Read, Resource: authz.TrainerStudentLink, OwnerID: actor.ID, TrainerOnly: true}
	if err := authorize(ctx, s.guard, req); err != nil {
		return nil, err
	}
	ids, err := s.linkRepo.StudentIDs(ctx, actor.ID)
	if err != nil {
		return nil, storeError("list linked students", err)
	}
	return ids, nil
}
