package catalog

import (
	"context"

	"islebook-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	List(ctx context.Context) ([]models.Activity, error)
	GetByID(ctx context.Context, id string) (models.Activity, error)
	Create(ctx context.Context, activity models.Activity) error
	Update(ctx context.Context, id string, fields bson.M) (models.Activity, error)
	Delete(ctx context.Context, id string) error
	ApplyRating(ctx context.Context, id string, stars int) (models.Activity, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) List(ctx context.Context) ([]models.Activity, error) {
	cursor, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.Activity, 0)
	for cursor.Next(ctx) {
		var activity models.Activity
		if err := cursor.Decode(&activity); err != nil {
			return nil, err
		}
		items = append(items, activity)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (models.Activity, error) {
	var activity models.Activity
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&activity); err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

func (r *MongoRepository) Create(ctx context.Context, activity models.Activity) error {
	_, err := r.col.InsertOne(ctx, activity)
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, fields bson.M) (models.Activity, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Activity
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated); err != nil {
		return models.Activity{}, err
	}
	return updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyRating folds one star value into the running average in a single
// server-side pipeline update, so concurrent submissions cannot lose each
// other's reviews the way a read-modify-write would.
func (r *MongoRepository) ApplyRating(ctx context.Context, id string, stars int) (models.Activity, error) {
	newCount := bson.M{"$add": bson.A{"$numberOfReviews", 1}}
	newRating := bson.M{"$round": bson.A{
		bson.M{"$divide": bson.A{
			bson.M{"$add": bson.A{
				bson.M{"$multiply": bson.A{"$rating", "$numberOfReviews"}},
				stars,
			}},
			newCount,
		}},
		1,
	}}

	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"rating":          newRating,
			"numberOfReviews": newCount,
		}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Activity
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&updated); err != nil {
		return models.Activity{}, err
	}
	return updated, nil
}
