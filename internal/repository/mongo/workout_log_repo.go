package mongo

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutLogCollectionName = "workout_logs"

type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new completion log repository.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		collection: db.Collection(workoutLogCollectionName),
	}
}

func (r *mongoWorkoutLogRepository) Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	if log.StudentID.IsZero() || log.WorkoutID.IsZero() {
		return primitive.NilObjectID, errors.New("workout log requires studentId and workoutId")
	}
	log.ID = primitive.NewObjectID()
	if log.CompletedAt.IsZero() {
		log.CompletedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, log); err != nil {
		return primitive.NilObjectID, err
	}
	return log.ID, nil
}

func (r *mongoWorkoutLogRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	return r.find(ctx, bson.M{"studentId": studentID})
}

func (r *mongoWorkoutLogRepository) ListSince(ctx context.Context, studentIDs []primitive.ObjectID, since time.Time) ([]domain.WorkoutLog, error) {
	if len(studentIDs) == 0 {
		return []domain.WorkoutLog{}, nil
	}
	return r.find(ctx, sinceFilter(studentIDs, since))
}

func (r *mongoWorkoutLogRepository) CountSince(ctx context.Context, studentIDs []primitive.ObjectID, since time.Time) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	return r.collection.CountDocuments(ctx, sinceFilter(studentIDs, since))
}

func sinceFilter(studentIDs []primitive.ObjectID, since time.Time) bson.M {
	return bson.M{
		"studentId":   bson.M{"$in": studentIDs},
		"completedAt": bson.M{"$gte": since},
	}
}

// find returns newest first.
func (r *mongoWorkoutLogRepository) find(ctx context.Context, filter bson.M) ([]domain.WorkoutLog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []domain.WorkoutLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// EnsureWorkoutLogIndexes creates necessary indexes.
func EnsureWorkoutLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "completedAt", Value: -1}},
	})
	return err
}
