package favorites

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Favorites live in one document per customer, keyed by email, with one
// field per favorited activity title. Titles, not ids: a favorite survives
// an activity being deleted and re-created under the same title, and goes
// stale if the title changes. Kept deliberately (see DESIGN.md). Titles with
// field-path metacharacters never reach here; the service rejects them.
type Repository interface {
	Get(ctx context.Context, email string) (map[string]bool, error)
	Add(ctx context.Context, email, title string) error
	Remove(ctx context.Context, email, title string) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Get(ctx context.Context, email string) (map[string]bool, error) {
	var doc bson.M
	err := r.col.FindOne(ctx, bson.M{"_id": email}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return map[string]bool{}, nil
		}
		return nil, err
	}

	titles := make(map[string]bool, len(doc))
	for key, value := range doc {
		if key == "_id" {
			continue
		}
		if truthy(value) {
			titles[key] = true
		}
	}
	return titles, nil
}

func (r *MongoRepository) Add(ctx context.Context, email, title string) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": email}, bson.M{"$set": bson.M{title: true}}, opts)
	return err
}

func (r *MongoRepository) Remove(ctx context.Context, email, title string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": email}, bson.M{"$unset": bson.M{title: ""}})
	return err
}

// truthy mirrors loose javascript truthiness for values written by older
// clients: false, 0 and "" are not favorites, anything else is.
func truthy(v interface{}) bool {
	switch value := v.(type) {
	case bool:
		return value
	case int32:
		return value != 0
	case int64:
		return value != 0
	case float64:
		return value != 0
	case string:
		return value != ""
	case nil:
		return false
	default:
		return true
	}
}
