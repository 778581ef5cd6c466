package service

import (
	"alcyxob/fitness-coach/internal/authz"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/history"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/validation"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validation.New()

// HistoryCache stores derived history series. Implementations swallow their
// own failures; a failed read is a miss.
type HistoryCache interface {
	Get(ctx context.Context, studentID primitive.ObjectID) ([]history.Point, bool)
	Set(ctx context.Context, studentID primitive.ObjectID, points []history.Point)
	Invalidate(ctx context.Context, studentID primitive.ObjectID)
}

type noopHistoryCache struct{}

func (noopHistoryCache) Get(context.Context, primitive.ObjectID) ([]history.Point, bool) {
	return nil, false
}
func (noopHistoryCache) Set(context.Context, primitive.ObjectID, []history.Point) {}
func (noopHistoryCache) Invalidate(context.Context, primitive.ObjectID) {}

// storeError wraps an infrastructure failure.
func storeError(op string, err error) error {
	return &domain.StoreError{Op: op, Err: err}
}

// repoError translates repository.ErrNotFound into a NotFoundError for entity
// and wraps anything else as a StoreError.
func repoError(op, entity string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.NotFoundError{Entity: entity}
	}
	return storeError(op, err)
}

// authorize runs the guard. Denials come back as *domain.AuthorizationError;
// a failed link lookup becomes a StoreError.
func authorize(ctx context.Context, guard *authz.Guard, req authz.Request) error {
	d, err := guard.Authorize(ctx, req)
	if err != nil {
		return storeError("check trainer link", err)
	}
	return d.Err()
}

// loadStudent fetches id and checks it is a student account.
func loadStudent(ctx context.Context, users repository.UserRepository, id primitive.ObjectID) (*domain.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("get student", "student", err)
	}
	if !u.IsStudent() {
		return nil, domain.NewValidationError("studentId", "is not a student account")
	}
	return u, nil
}

// StartOfDay is local midnight of t, in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
