package sqlite

import (
	"context"
	"time"

	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LinkStore implements repository.LinkRepository.
type LinkStore struct {
	db SQLDB
}

var _ repository.LinkRepository = (*LinkStore)(nil)

// NewLinkStore creates a new LinkStore.
func NewLinkStore(db SQLDB) *LinkStore {
	return &LinkStore{db: db}
}

// Link inserts the pair unless it already exists.
// POST: created reports whether a row was inserted
func (s *LinkStore) Link(ctx context.Context, trainerID, studentID primitive.ObjectID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO trainer_student_links (trainer_id, student_id, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
		trainerID.Hex(), studentID.Hex(), formatTime(time.Now()))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *LinkStore) Unlink(ctx context.Context, trainerID, studentID primitive.ObjectID) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM trainer_student_links WHERE trainer_id = ? AND student_id = ?",
		trainerID.Hex(), studentID.Hex())
	return err
}

func (s *LinkStore) IsLinked(ctx context.Context, trainerID, studentID primitive.ObjectID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM trainer_student_links WHERE trainer_id = ? AND student_id = ?)",
		trainerID.Hex(), studentID.Hex()).Scan(&exists)
	return exists, err
}

func (s *LinkStore) StudentIDs(ctx context.Context, trainerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.ids(ctx,
		"SELECT student_id FROM trainer_student_links WHERE trainer_id = ? ORDER BY created_at, rowid",
		trainerID.Hex())
}

func (s *LinkStore) TrainerIDs(ctx context.Context, studentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.ids(ctx,
		"SELECT trainer_id FROM trainer_student_links WHERE student_id = ? ORDER BY created_at, rowid",
		studentID.Hex())
}

func (s *LinkStore) ids(ctx context.Context, query string, arg string) ([]primitive.ObjectID, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []primitive.ObjectID
	for rows.Next() {
		var hex string
		if err := rows.Scan(&hex); err != nil {
			return nil, err
		}
		id, err := parseID(hex)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
