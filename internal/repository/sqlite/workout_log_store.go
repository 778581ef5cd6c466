package sqlite

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutLogStore implements repository.WorkoutLogRepository.
type WorkoutLogStore struct {
	db SQLDB
}

var _ repository.WorkoutLogRepository = (*WorkoutLogStore)(nil)

// NewWorkoutLogStore creates a new WorkoutLogStore.
func NewWorkoutLogStore(db SQLDB) *WorkoutLogStore {
	return &WorkoutLogStore{db: db}
}

func (s *WorkoutLogStore) Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	if log.StudentID.IsZero() || log.WorkoutID.IsZero() {
		return primitive.NilObjectID, errors.New("workout log requires studentId and workoutId")
	}
	log.ID = primitive.NewObjectID()
	if log.CompletedAt.IsZero() {
		log.CompletedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO workout_logs (id, student_id, workout_id, completed_at) VALUES (?, ?, ?, ?)",
		log.ID.Hex(), log.StudentID.Hex(), log.WorkoutID.Hex(), formatTime(log.CompletedAt))
	if err != nil {
		return primitive.NilObjectID, err
	}
	return log.ID, nil
}

func (s *WorkoutLogStore) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	return s.query(ctx,
		"SELECT id, student_id, workout_id, completed_at FROM workout_logs WHERE student_id = ? ORDER BY completed_at DESC, rowid DESC",
		studentID.Hex())
}

func (s *WorkoutLogStore) ListSince(ctx context.Context, studentIDs []primitive.ObjectID, since time.Time) ([]domain.WorkoutLog, error) {
	if len(studentIDs) == 0 {
		return []domain.WorkoutLog{}, nil
	}
	in, args := inClause(studentIDs)
	args = append(args, formatTime(since))
	return s.query(ctx,
		"SELECT id, student_id, workout_id, completed_at FROM workout_logs WHERE student_id IN ("+in+") AND completed_at >= ? ORDER BY completed_at DESC, rowid DESC",
		args...)
}

func (s *WorkoutLogStore) CountSince(ctx context.Context, studentIDs []primitive.ObjectID, since time.Time) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	in, args := inClause(studentIDs)
	args = append(args, formatTime(since))
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM workout_logs WHERE student_id IN ("+in+") AND completed_at >= ?",
		args...).Scan(&n)
	return n, err
}

func (s *WorkoutLogStore) query(ctx context.Context, query string, args ...any) ([]domain.WorkoutLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []domain.WorkoutLog{}
	for rows.Next() {
		var (
			l                                  domain.WorkoutLog
			id, studentID, workoutID, complete string
		)
		if err := rows.Scan(&id, &studentID, &workoutID, &complete); err != nil {
			return nil, err
		}
		if l.ID, err = parseID(id); err != nil {
			return nil, err
		}
		if l.StudentID, err = parseID(studentID); err != nil {
			return nil, err
		}
		if l.WorkoutID, err = parseID(workoutID); err != nil {
			return nil, err
		}
		if l.CompletedAt, err = parseTime(complete); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
