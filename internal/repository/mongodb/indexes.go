package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		appointmentsCollection: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_appointment_code")},
			{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "appointment_date", Value: 1}}},
			{Keys: bson.D{{Key: "service_id", Value: 1}}},
		},
		servicesCollection: {
			{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "name", Value: 1}}},
		},
		aliveLogsCollection: {
			{Keys: bson.D{{Key: "appointment_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "code", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
