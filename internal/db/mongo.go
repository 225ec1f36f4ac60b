package db

import (
	"context"
	"time"

	"islebook-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collections struct {
	Activities   *mongo.Collection
	Appointments *mongo.Collection
	Favorites    *mongo.Collection
	Users        *mongo.Collection
	Messages     *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *Collections, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	database := client.Database(dbName)

	cols := &Collections{
		Activities:   database.Collection("activities"),
		Appointments: database.Collection("appointments"),
		Favorites:    database.Collection("favorites"),
		Users:        database.Collection("users"),
		Messages:     database.Collection("messages"),
	}

	return client, cols, nil
}

func EnsureIndexes(ctx context.Context, cols *Collections) error {
	indexTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := cols.Users.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	// The partial unique index is what makes a slot unbookable twice: two
	// racing bookings for the same activity hour collide here instead of
	// both succeeding. Canceled appointments release the slot.
	_, err = cols.Appointments.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "activityId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "time", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": bson.A{
						models.AppointmentStatusPending,
						models.AppointmentStatusConfirmed,
					}},
				}),
		},
		{
			Keys: bson.D{{Key: "customerEmail", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = cols.Messages.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "activityId", Value: 1}, {Key: "createdAt", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	return nil
}
