package main

import (
	"context"
	"fmt"
	"log"
	"time"

	mongoMigration "hotelier/internal/migrations/mongo"
	"hotelier/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()
	cfg := config.Load(JobName)
	cfg.SetMongo()
	cfg.Log.Info("Starting Mongo migration job")
	defer func() {
		if err := cfg.Client.Close(ctx); err != nil {
			cfg.Log.Error("Failed to close Mongo client", "error", err)
		}
	}()
	migrateMongo(ctx, cfg)
	fmt.Println("Migration completed successfully.")
}

func migrateMongo(ctx context.Context, cfg *config.Config) {
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}
