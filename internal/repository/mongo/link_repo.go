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

const linkCollectionName = "trainer_student_links"

// mongoLinkRepository implements repository.LinkRepository.
type mongoLinkRepository struct {
	collection *mongo.Collection
}

// NewMongoLinkRepository creates a new link repository.
func NewMongoLinkRepository(db *mongo.Database) repository.LinkRepository {
	return &mongoLinkRepository{
		collection: db.Collection(linkCollectionName),
	}
}

// Link upserts the pair. $setOnInsert leaves an existing link untouched, and
// the unique index turns a concurrent double insert into a duplicate key
// error that is treated as "already linked".
func (r *mongoLinkRepository) Link(ctx context.Context, trainerID, studentID primitive.ObjectID) (bool, error) {
	filter := bson.M{"trainerId": trainerID, "studentId": studentID}
	update := bson.M{"$setOnInsert": bson.M{"createdAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

func (r *mongoLinkRepository) Unlink(ctx context.Context, trainerID, studentID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"trainerId": trainerID, "studentId": studentID})
	return err
}

func (r *mongoLinkRepository) IsLinked(ctx context.Context, trainerID, studentID primitive.ObjectID) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"trainerId": trainerID, "studentId": studentID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *mongoLinkRepository) StudentIDs(ctx context.Context, trainerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	links, err := r.find(ctx, bson.M{"trainerId": trainerID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(links))
	for i, l := range links {
		ids[i] = l.StudentID
	}
	return ids, nil
}

func (r *mongoLinkRepository) TrainerIDs(ctx context.Context, studentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	links, err := r.find(ctx, bson.M{"studentId": studentID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(links))
	for i, l := range links {
		ids[i] = l.TrainerID
	}
	return ids, nil
}

func (r *mongoLinkRepository) find(ctx context.Context, filter bson.M) ([]domain.TrainerStudentLink, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []domain.TrainerStudentLink
	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// EnsureLinkIndexes creates the unique pair index and the reverse lookup index.
func EnsureLinkIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "studentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "studentId", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
