package repository

import (
	"alcyxob/fitness-coach/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer. Adapters return these for the
// conditions services branch on; anything else is an infrastructure failure.
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository stores identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) // ErrDuplicate on email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetByIDs returns the users that exist, ordered by name.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	// UpdateProfile persists the profile fields of user (not email, role or password).
	UpdateProfile(ctx context.Context, user *domain.User) error
	// Search matches query case-insensitively against name or email among
	// users with the given role, ordered by name.
	Search(ctx context.Context, query string, role domain.Role, limit int) ([]domain.User, error)
}

// LinkRepository stores the trainer/student relation.
type LinkRepository interface {
	// Link is idempotent; created is false when the pair already existed.
	Link(ctx context.Context, trainerID, studentID primitive.ObjectID) (created bool, err error)
	// Unlink is a no-op when the pair does not exist.
	Unlink(ctx context.Context, trainerID, studentID primitive.ObjectID) error
	IsLinked(ctx context.Context, trainerID, studentID primitive.ObjectID) (bool, error)
	StudentIDs(ctx context.Context, trainerID primitive.ObjectID) ([]primitive.ObjectID, error)
	TrainerIDs(ctx context.Context, studentID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// AssessmentRepository stores assessments. There is no update or delete.
type AssessmentRepository interface {
	Create(ctx context.Context, a *domain.Assessment) (primitive.ObjectID, error)
	// ListByStudent returns assessments in insertion order.
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Assessment, error)
	// Latest returns the assessment with the newest date; ErrNotFound when none.
	Latest(ctx context.Context, studentID primitive.ObjectID) (*domain.Assessment, error)
	CountByStudents(ctx context.Context, studentIDs []primitive.ObjectID) (int64, error)
}

// WorkoutPlanRepository stores workout plans.
type WorkoutPlanRepository interface {
	Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error)
	// UpsertByWeekday replaces title and content of the plan keyed by
	// (StudentID, *Weekday), inserting it if absent. plan.Weekday must be set.
	UpsertByWeekday(ctx context.Context, plan *domain.WorkoutPlan) (*domain.WorkoutPlan, error)
	// Update rewrites title, weekday and content. ErrDuplicate when the new
	// weekday is taken by another plan of the same student.
	Update(ctx context.Context, plan *domain.WorkoutPlan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutPlan, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.WorkoutPlan, error)
	// ListByStudent returns plans in insertion order.
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.WorkoutPlan, error)
}

// WorkoutLogRepository stores completion logs. Append-only.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error)
	// ListByStudent returns logs newest first.
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.WorkoutLog, error)
	// ListSince returns logs of the given students completed at or after
	// since, newest first.
	ListSince(ctx context.Context, studentIDs []primitive.ObjectID, since time.Time) ([]domain.WorkoutLog, error)
	CountSince(ctx context.Context, studentIDs []primitive.ObjectID, since time.Time) (int64, error)
}
