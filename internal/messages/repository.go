package messages

import (
	"context"

	"islebook-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, message models.Message) error
	ListByActivity(ctx context.Context, activityID string, limit int64) ([]models.Message, error)
	Watch(ctx context.Context, activityID string) (ChangeStream, error)
}

// ChangeStream is the part of mongo.ChangeStream the live feed consumes.
type ChangeStream interface {
	Next(ctx context.Context) bool
	Decode(v interface{}) error
	Err() error
	Close(ctx context.Context) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, message models.Message) error {
	_, err := r.col.InsertOne(ctx, message)
	return err
}

func (r *MongoRepository) ListByActivity(ctx context.Context, activityID string, limit int64) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit)
	cursor, err := r.col.Find(ctx, bson.M{"activityId": activityID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.Message, 0)
	for cursor.Next(ctx) {
		var message models.Message
		if err := cursor.Decode(&message); err != nil {
			return nil, err
		}
		items = append(items, message)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Watch opens a change stream over inserts for one activity's thread.
// Requires a replica set; standalone mongod refuses change streams, in which
// case the live feed endpoint reports unavailable.
func (r *MongoRepository) Watch(ctx context.Context, activityID string) (ChangeStream, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType":           "insert",
			"fullDocument.activityId": activityID,
		}}},
	}
	return r.col.Watch(ctx, pipeline)
}
