package service

import (
	"alcyxob/fitness-coach/internal/authz"
	"alcyxob/fitness-coach/internal/bodycomp"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/history"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssessmentInput is what a trainer records. Age and sex fall back to the
// student's profile when omitted; Date defaults to now.
type AssessmentInput struct {
	Date      *time.Time       `json:"date"`
	WeightKg  float64          `json:"weightKg"`
	HeightCm  float64          `json:"heightCm"`
	AgeYears  *int             `json:"ageYears"`
	Sex       domain.Sex       `json:"sex"`
	Skinfolds domain.Skinfolds `json:"skinfolds"`
}

// Composition is the latest assessment with its mass split.
type Composition struct {
	Assessment domain.Assessment `json:"assessment"`
	FatMassKg  float64           `json:"fatMassKg"`
	LeanMassKg float64           `json:"leanMassKg"`
}

type AssessmentService interface {
	CreateAssessment(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID, in AssessmentInput) (*domain.Assessment, error)
	ListAssessments(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) ([]domain.Assessment, error)
	LatestComposition(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) (*Composition, error)
	History(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) ([]history.Point, error)
}

// assessmentService implements the AssessmentService interface.
type assessmentService struct {
	guard          *authz.Guard
	userRepo       repository.UserRepository
	assessmentRepo repository.AssessmentRepository
	historyCache   HistoryCache
	now            func() time.Time
}

// NewAssessmentService creates a new instance of assessmentService. A nil
// cache disables history caching.
func NewAssessmentService(
	guard *authz.Guard,
	userRepo repository.UserRepository,
	assessmentRepo repository.AssessmentRepository,
	historyCache HistoryCache,
) AssessmentService {
	if historyCache == nil {
		historyCache = noopHistoryCache{}
	}
	return &assessmentService{
		guard:          guard,
		userRepo:       userRepo,
		assessmentRepo: assessmentRepo,
		historyCache:   historyCache,
		now:            time.Now,
	}
}

func (s *assessmentService) CreateAssessment(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID, in AssessmentInput) (*domain.Assessment, error) {
	req := authz.Request{Actor: actor, Action: authz.Create, Resource: authz.Assessment, OwnerID: studentID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return nil, err
	}
	student, err := loadStudent(ctx, s.userRepo, studentID)
	if err != nil {
		return nil, err
	}

	calc := bodycomp.Input{
		WeightKg:  in.WeightKg,
		HeightCm:  in.HeightCm,
		Sex:       in.Sex,
		Skinfolds: in.Skinfolds,
	}
	switch {
	case in.AgeYears != nil:
		calc.AgeYears = *in.AgeYears
	case student.Age != nil:
		calc.AgeYears = *student.Age
	default:
		return nil, domain.NewValidationError("ageYears", "is required when the student profile has no age")
	}
	if calc.Sex == "" {
		calc.Sex = student.Sex
	}
	if calc.Sex == "" {
		calc.Sex = domain.SexMale
	}

	result, err := bodycomp.Calculate(calc)
	if err != nil {
		return nil, err
	}

	date := s.now().UTC()
	if in.Date != nil && !in.Date.IsZero() {
		date = in.Date.UTC()
	}
	a := &domain.Assessment{
		StudentID:         studentID,
		Date:              date,
		WeightKg:          in.WeightKg,
		HeightCm:          in.HeightCm,
		Skinfolds:         in.Skinfolds,
		AgeYears:          calc.AgeYears,
		Sex:               calc.Sex,
		BodyDensity:       result.BodyDensity,
		BodyFatPercentage: result.BodyFatPercentage,
	}
	if _, err := s.assessmentRepo.Create(ctx, a); err != nil {
		return nil, storeError("create assessment", err)
	}
	s.historyCache.Invalidate(ctx, studentID)
	return a, nil
}

// ListAssessments returns the student's assessments newest first.
func (s *assessmentService) ListAssessments(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) ([]domain.Assessment, error) {
	req := authz.Request{Actor: actor, Action: authz.Read, Resource: authz.Assessment, OwnerID: studentID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return nil, err
	}
	list, err := s.assessmentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeError("list assessments", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date.After(list[j].Date)
	})
	return list, nil
}

func (s *assessmentService) LatestComposition(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) (*Composition, error) {
	req := authz.Request{Actor: actor, Action: authz.Read, Resource: authz.Assessment, OwnerID: studentID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return nil, err
	}
	latest, err := s.assessmentRepo.Latest(ctx, studentID)
	if err != nil {
		return nil, repoError("get latest assessment", "assessment", err)
	}
	fat, lean := bodycomp.Masses(latest.WeightKg, latest.BodyFatPercentage)
	return &Composition{Assessment: *latest, FatMassKg: fat, LeanMassKg: lean}, nil
}

// History returns the ascending trend series, from cache when possible.
func (s *assessmentService) History(ctx context.Context, actor domain.Actor, studentID primitive.ObjectID) ([]history.Point, error) {
	req := authz.Request{Actor: actor, Action: authz.Read, Resource: authz.Assessment, OwnerID: studentID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return nil, err
	}
	if points, ok := s.historyCache.Get(ctx, studentID); ok {
		return points, nil
	}
	list, err := s.assessmentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeError("list assessments", err)
	}
	points := history.Track(list)
	s.historyCache.Set(ctx, studentID, points)
	return points, nil
}
