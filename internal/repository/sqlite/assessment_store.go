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

const assessmentColumns = `id, student_id, date, weight_kg, height_cm,
	chest_mm, abdominal_mm, thigh_mm, tricep_mm, subscapular_mm, suprailiac_mm, midaxillary_mm,
	age_years, sex, body_density, body_fat_percentage, created_at`

// AssessmentStore implements repository.AssessmentRepository.
type AssessmentStore struct {
	db SQLDB
}

var _ repository.AssessmentRepository = (*AssessmentStore)(nil)

// NewAssessmentStore creates a new AssessmentStore.
func NewAssessmentStore(db SQLDB) *AssessmentStore {
	return &AssessmentStore{db: db}
}

// Create inserts a.
// PRE: derived fields have been computed
func (s *AssessmentStore) Create(ctx context.Context, a *domain.Assessment) (primitive.ObjectID, error) {
	if a.StudentID.IsZero() {
		return primitive.NilObjectID, errors.New("assessment requires studentId")
	}
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()

	sf := a.Skinfolds
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO assessments ("+assessmentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		a.ID.Hex(), a.StudentID.Hex(), formatTime(a.Date), a.WeightKg, a.HeightCm,
		sf.Chest, sf.Abdominal, sf.Thigh, sf.Tricep, sf.Subscapular, sf.Suprailiac, sf.Midaxillary,
		a.AgeYears, string(a.Sex), a.BodyDensity, a.BodyFatPercentage, formatTime(a.CreatedAt),
	)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return a.ID, nil
}

func (s *AssessmentStore) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Assessment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+assessmentColumns+" FROM assessments WHERE student_id = ? ORDER BY rowid",
		studentID.Hex())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *AssessmentStore) Latest(ctx context.Context, studentID primitive.ObjectID) (*domain.Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+assessmentColumns+" FROM assessments WHERE student_id = ? ORDER BY date DESC, rowid DESC LIMIT 1",
		studentID.Hex())
	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return a, err
}

func (s *AssessmentStore) CountByStudents(ctx context.Context, studentIDs []primitive.ObjectID) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	in, args := inClause(studentIDs)
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments WHERE student_id IN ("+in+")", args...).Scan(&n)
	return n, err
}

func scanAssessment(row rowScanner) (*domain.Assessment, error) {
	var (
		a                  domain.Assessment
		id, studentID, sex string
		date, created      string
	)
	sf := &a.Skinfolds
	err := row.Scan(&id, &studentID, &date, &a.WeightKg, &a.HeightCm,
		&sf.Chest, &sf.Abdominal, &sf.Thigh, &sf.Tricep, &sf.Subscapular, &sf.Suprailiac, &sf.Midaxillary,
		&a.AgeYears, &sex, &a.BodyDensity, &a.BodyFatPercentage, &created)
	if err != nil {
		return nil, err
	}
	if a.ID, err = parseID(id); err != nil {
		return nil, err
	}
	if a.StudentID, err = parseID(studentID); err != nil {
		return nil, err
	}
	a.Sex = domain.Sex(sex)
	if a.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &a, nil
}
