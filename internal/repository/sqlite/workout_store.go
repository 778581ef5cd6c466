package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const workoutPlanColumns = "id, student_id, title, weekday, content, created_at, updated_at"

// WorkoutPlanStore implements repository.WorkoutPlanRepository.
type WorkoutPlanStore struct {
	db SQLDB
}

var _ repository.WorkoutPlanRepository = (*WorkoutPlanStore)(nil)

// NewWorkoutPlanStore creates a new WorkoutPlanStore.
func NewWorkoutPlanStore(db SQLDB) *WorkoutPlanStore {
	return &WorkoutPlanStore{db: db}
}

// Create inserts plan.
// POST: returns repository.ErrDuplicate when plan.Weekday is already taken
func (s *WorkoutPlanStore) Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error) {
	if plan.StudentID.IsZero() || plan.Title == "" {
		return primitive.NilObjectID, errors.New("workout plan requires studentId and title")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO workout_plans ("+workoutPlanColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		plan.ID.Hex(), plan.StudentID.Hex(), plan.Title, nullInt(plan.Weekday), plan.Content,
		formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return plan.ID, nil
}

// UpsertByWeekday inserts or rewrites the plan for (student, weekday) in one
// statement.
// PRE: plan.Weekday is non-nil
func (s *WorkoutPlanStore) UpsertByWeekday(ctx context.Context, plan *domain.WorkoutPlan) (*domain.WorkoutPlan, error) {
	if plan.Weekday == nil {
		return nil, errors.New("upsert requires a weekday")
	}
	now := formatTime(time.Now())
	row := s.db.QueryRowContext(ctx, `INSERT INTO workout_plans (`+workoutPlanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, weekday) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			updated_at = excluded.updated_at
		RETURNING `+workoutPlanColumns,
		primitive.NewObjectID().Hex(), plan.StudentID.Hex(), plan.Title, *plan.Weekday, plan.Content, now, now)
	return scanWorkoutPlan(row)
}

// Update rewrites title, weekday and content.
// POST: repository.ErrNotFound when absent, repository.ErrDuplicate when the weekday is taken
func (s *WorkoutPlanStore) Update(ctx context.Context, plan *domain.WorkoutPlan) error {
	if plan.ID.IsZero() {
		return errors.New("workout plan ID is required for update")
	}
	plan.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		"UPDATE workout_plans SET title = ?, weekday = ?, content = ?, updated_at = ? WHERE id = ?",
		plan.Title, nullInt(plan.Weekday), plan.Content, formatTime(plan.UpdatedAt), plan.ID.Hex())
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return expectOneRow(result)
}

func (s *WorkoutPlanStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM workout_plans WHERE id = ?", id.Hex())
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (s *WorkoutPlanStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutPlan, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+workoutPlanColumns+" FROM workout_plans WHERE id = ?", id.Hex())
	plan, err := scanWorkoutPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return plan, err
}

func (s *WorkoutPlanStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	if len(ids) == 0 {
		return []domain.WorkoutPlan{}, nil
	}
	in, args := inClause(ids)
	return s.query(ctx, "SELECT "+workoutPlanColumns+" FROM workout_plans WHERE id IN ("+in+") ORDER BY rowid", args...)
}

func (s *WorkoutPlanStore) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	return s.query(ctx,
		"SELECT "+workoutPlanColumns+" FROM workout_plans WHERE student_id = ? ORDER BY rowid",
		studentID.Hex())
}

func (s *WorkoutPlanStore) query(ctx context.Context, query string, args ...any) ([]domain.WorkoutPlan, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []domain.WorkoutPlan{}
	for rows.Next() {
		p, err := scanWorkoutPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func scanWorkoutPlan(row rowScanner) (*domain.WorkoutPlan, error) {
	var (
		p                domain.WorkoutPlan
		id, studentID    string
		created, updated string
		weekday          sql.NullInt64
	)
	err := row.Scan(&id, &studentID, &p.Title, &weekday, &p.Content, &created, &updated)
	if err != nil {
		return nil, err
	}
	if p.ID, err = parseID(id); err != nil {
		return nil, err
	}
	if p.StudentID, err = parseID(studentID); err != nil {
		return nil, err
	}
	if weekday.Valid {
		d := int(weekday.Int64)
		p.Weekday = &d
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
