package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. The unique indexes
// back idempotent linking, email uniqueness and the per-weekday plan upsert,
// so a failure here is returned rather than ignored.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	steps := []func(context.Context, *mongo.Database) error{
		func(ctx context.Context, db *mongo.Database) error {
			return EnsureUserIndexes(ctx, db.Collection(userCollectionName))
		},
		func(ctx context.Context, db *mongo.Database) error {
			return EnsureLinkIndexes(ctx, db.Collection(linkCollectionName))
		},
		func(ctx context.Context, db *mongo.Database) error {
			return EnsureAssessmentIndexes(ctx, db.Collection(assessmentCollectionName))
		},
		func(ctx context.Context, db *mongo.Database) error {
			return EnsureWorkoutPlanIndexes(ctx, db.Collection(workoutPlanCollectionName))
		},
		func(ctx context.Context, db *mongo.Database) error {
			return EnsureWorkoutLogIndexes(ctx, db.Collection(workoutLogCollectionName))
		},
	}
	for _, step := range steps {
		if err := step(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
