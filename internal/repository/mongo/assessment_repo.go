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

const assessmentCollectionName = "assessments"

type mongoAssessmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssessmentRepository creates a new assessment repository.
func NewMongoAssessmentRepository(db *mongo.Database) repository.AssessmentRepository {
	return &mongoAssessmentRepository{
		collection: db.Collection(assessmentCollectionName),
	}
}

func (r *mongoAssessmentRepository) Create(ctx context.Context, a *domain.Assessment) (primitive.ObjectID, error) {
	if a.StudentID.IsZero() {
		return primitive.NilObjectID, errors.New("assessment requires studentId")
	}
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, a); err != nil {
		return primitive.NilObjectID, err
	}
	return a.ID, nil
}

// ListByStudent sorts on _id, which grows with insertion.
func (r *mongoAssessmentRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Assessment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"studentId": studentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assessments := []domain.Assessment{}
	if err = cursor.All(ctx, &assessments); err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *mongoAssessmentRepository) Latest(ctx context.Context, studentID primitive.ObjectID) (*domain.Assessment, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})

	var a domain.Assessment
	err := r.collection.FindOne(ctx, bson.M{"studentId": studentID}, findOptions).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *mongoAssessmentRepository) CountByStudents(ctx context.Context, studentIDs []primitive.ObjectID) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	return r.collection.CountDocuments(ctx, bson.M{"studentId": bson.M{"$in": studentIDs}})
}

// EnsureAssessmentIndexes creates necessary indexes.
func EnsureAssessmentIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "date", Value: -1}},
	})
	return err
}
