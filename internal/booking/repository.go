package booking

import (
	"context"
	"time"

	"islebook-backend/internal/models"
	"islebook-backend/internal/schedule"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, appointment models.Appointment) error
	GetByID(ctx context.Context, id string) (models.Appointment, error)
	ListByCustomer(ctx context.Context, email string) ([]models.Appointment, error)
	ReservedHours(ctx context.Context, activityID, date string) (map[int]bool, error)
	SetPaymentIntent(ctx context.Context, id, intentID string) error
	ConfirmPending(ctx context.Context, id string) (models.Appointment, error)
	CancelPending(ctx context.Context, id string) (models.Appointment, error)
	AttachRating(ctx context.Context, id string, stars int) (bool, error)
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, appointment models.Appointment) error {
	_, err := r.col.InsertOne(ctx, appointment)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (models.Appointment, error) {
	var appointment models.Appointment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&appointment); err != nil {
		return models.Appointment{}, err
	}
	return appointment, nil
}

func (r *MongoRepository) ListByCustomer(ctx context.Context, email string) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"customerEmail": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.Appointment, 0)
	for cursor.Next(ctx) {
		var appointment models.Appointment
		if err := cursor.Decode(&appointment); err != nil {
			return nil, err
		}
		items = append(items, appointment)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// ReservedHours collects the taken hour slots for an activity on a calendar
// day. Pending appointments hold their slot too: a customer mid-payment must
// not see their hour offered to someone else.
func (r *MongoRepository) ReservedHours(ctx context.Context, activityID, date string) (map[int]bool, error) {
	filter := bson.M{
		"activityId": activityID,
		"date":       date,
		"status": bson.M{"$in": bson.A{
			models.AppointmentStatusPending,
			models.AppointmentStatusConfirmed,
		}},
	}

	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reserved := make(map[int]bool)
	for cursor.Next(ctx) {
		var doc struct {
			Time string `bson:"time"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		hour, err := schedule.SlotHour(doc.Time)
		if err != nil {
			continue
		}
		reserved[hour] = true
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return reserved, nil
}

func (r *MongoRepository) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"paymentIntent": intentID}})
	return err
}

func (r *MongoRepository) ConfirmPending(ctx context.Context, id string) (models.Appointment, error) {
	return r.transitionFromPending(ctx, id, models.AppointmentStatusConfirmed)
}

func (r *MongoRepository) CancelPending(ctx context.Context, id string) (models.Appointment, error) {
	return r.transitionFromPending(ctx, id, models.AppointmentStatusCanceled)
}

func (r *MongoRepository) transitionFromPending(ctx context.Context, id, status string) (models.Appointment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := bson.M{"_id": id, "status": models.AppointmentStatusPending}
	update := bson.M{"$set": bson.M{"status": status}}

	var updated models.Appointment
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return models.Appointment{}, err
	}
	return updated, nil
}

// AttachRating sets the star value only when no rating exists yet; the
// condition makes one-rating-per-appointment hold even under concurrent
// submissions. Returns false when the appointment was already rated or
// missing.
func (r *MongoRepository) AttachRating(ctx context.Context, id string, stars int) (bool, error) {
	filter := bson.M{
		"_id":    id,
		"rating": bson.M{"$exists": false},
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"rating": stars}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoRepository) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{
		"status":    models.AppointmentStatusPending,
		"createdAt": bson.M{"$lt": cutoff},
	}
	res, err := r.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": models.AppointmentStatusCanceled}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
