package main

import (
	"context"
	"log"
	"os"
	"time"

	"islebook-backend/internal/auth"
	"islebook-backend/internal/config"
	"islebook-backend/internal/db"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedActivity struct {
	Title        string
	Description  string
	Duration     int
	Price        float64
	Location     string
	ManagerName  string
	ManagerEmail string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	activities := []seedActivity{
		{Title: "Scuba Diving", Description: "Guided dive along the reefs and wrecks off Cirkewwa.", Duration: 180, Price: 50, Location: "Cirkewwa", ManagerName: "Matthew Borg", ManagerEmail: "matthew@islebook.mt"},
		{Title: "Blue Lagoon Boat Trip", Description: "Half-day cruise to Comino with swim stops in the lagoon.", Duration: 240, Price: 35, Location: "Comino", ManagerName: "Maria Vella", ManagerEmail: "maria@islebook.mt"},
		{Title: "Mdina Walking Tour", Description: "Guided walk through the Silent City and its bastions.", Duration: 120, Price: 20, Location: "Mdina", ManagerName: "Josef Camilleri", ManagerEmail: "josef@islebook.mt"},
		{Title: "Gozo Jeep Safari", Description: "Full-day off-road tour of Gozo's coastline and salt pans.", Duration: 420, Price: 80, Location: "Gozo", ManagerName: "Claire Farrugia", ManagerEmail: "claire@islebook.mt"},
		{Title: "Kayaking at Golden Bay", Description: "Coastal kayak session with snorkeling gear included.", Duration: 120, Price: 30, Location: "Golden Bay", ManagerName: "Luca Grech", ManagerEmail: "luca@islebook.mt"},
		{Title: "Valletta Food Tour", Description: "Tasting walk through the capital's markets and wine bars.", Duration: 180, Price: 45, Location: "Valletta", ManagerName: "Sarah Attard", ManagerEmail: "sarah@islebook.mt"},
	}

	for _, act := range activities {
		filter := bson.M{"title": act.Title}
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":             uuid.NewString(),
				"title":           act.Title,
				"description":     act.Description,
				"duration":        act.Duration,
				"price":           act.Price,
				"location":        act.Location,
				"managerName":     act.ManagerName,
				"managerEmail":    act.ManagerEmail,
				"rating":          0.0,
				"numberOfReviews": 0,
				"createdAt":       time.Now().In(cfg.Timezone),
			},
		}

		if _, err := cols.Activities.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			log.Fatalf("seed error for %s: %v", act.Title, err)
		}
	}

	if err := seedDemoUser(ctx, cols, cfg.Timezone); err != nil {
		log.Fatalf("seed demo user error: %v", err)
	}

	log.Println("seed completed")
}

// seedDemoUser creates a login for local testing when DEMO_PASSWORD is set.
func seedDemoUser(ctx context.Context, cols *db.Collections, loc *time.Location) error {
	password := os.Getenv("DEMO_PASSWORD")
	if password == "" {
		log.Println("seed demo user: DEMO_PASSWORD missing, skipping")
		return nil
	}
	email := envOrDefault("DEMO_EMAIL", "demo@islebook.mt")

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now().In(loc)
	update := bson.M{
		"$set": bson.M{"passwordHash": hash},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"firstName": "Demo",
			"lastName":  "Visitor",
			"email":     email,
			"createdAt": now,
		},
	}

	_, err = cols.Users.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	return err
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
