package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelier/internal/migrations/mongo/validators"
)

var (
	HotelsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	RoomsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "hotel_id", Value: 1}}},
		{Keys: bson.D{
			{Key: "hotel_id", Value: 1},
			{Key: "is_available", Value: 1},
		}},
	}

	ReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "check_in", Value: 1},
			{Key: "check_out", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "hotel_id", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}

	AuditLogIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{
			{Key: "hotel_id", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}}},
	}

	BackupsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "created_at", Value: -1},
		}},
	}

	// Mongo reaps abandoned room locks once expires_at passes. The lock
	// acquisition path treats a duplicate _id as a conflict, so reaping is
	// the only delete path besides explicit release.
	RoomLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running Hotelier Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Hotels": {
			Indexes:   HotelsIndexes,
			Validator: validators.HotelValidator,
		},
		"Rooms": {
			Indexes:   RoomsIndexes,
			Validator: validators.RoomValidator,
		},
		"Reservations": {
			Indexes:   ReservationsIndexes,
			Validator: validators.ReservationValidator,
		},
		"Audit_log": {
			Indexes:   AuditLogIndexes,
			Validator: validators.AuditLogValidator,
		},
		"Backups": {
			Indexes:   BackupsIndexes,
			Validator: validators.BackupValidator,
		},
		"Room_locks": {
			Indexes: RoomLocksIndexes,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts = opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else if validator != nil {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
