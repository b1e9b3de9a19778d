package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	backupserrors "hotelier/internal/backups/errors"
	"hotelier/pkg/config"
	"hotelier/pkg/model"
)

const (
	CollectionName = "Backups"
)

// BackupRepository persists backup run records. The record ID is a UUID
// assigned by the service, not a Mongo ObjectID, because it doubles as
// the archive file name.
type BackupRepository interface {
	Insert(ctx context.Context, record *model.BackupRecord) error
	FindByID(ctx context.Context, id string) (*model.BackupRecord, error)
	FindAll(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.BackupRecord, error)
	Count(ctx context.Context, hotelID string) (int64, error)
	SetRunning(ctx context.Context, id string) error
	SetSuccess(ctx context.Context, id string, sizeBytes int64, storagePath string) error
	SetFailed(ctx context.Context, id string, errMsg string) error
}

type mongoBackupRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBackupRepository(cfg *config.Config) BackupRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBackupRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBackupRepository) Insert(ctx context.Context, record *model.BackupRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	record.CreatedAt = now
	record.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert backup record: %w", err)
	}
	return nil
}

func (r *mongoBackupRepository) FindByID(ctx context.Context, id string) (*model.BackupRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var record model.BackupRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, backupserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find backup record: %w", err)
	}

	return &record, nil
}

func (r *mongoBackupRepository) FindAll(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.BackupRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, listQuery(hotelID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find backup records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.BackupRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode backup records: %w", err)
	}

	return records, nil
}

func (r *mongoBackupRepository) Count(ctx context.Context, hotelID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, listQuery(hotelID))
	if err != nil {
		return 0, fmt.Errorf("failed to count backup records: %w", err)
	}
	return count, nil
}

func listQuery(hotelID string) bson.M {
	if hotelID == "" {
		return bson.M{}
	}
	return bson.M{"hotel_id": hotelID}
}

func (r *mongoBackupRepository) SetRunning(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, bson.M{
		"status": model.BackupRunning,
	})
}

func (r *mongoBackupRepository) SetSuccess(ctx context.Context, id string, sizeBytes int64, storagePath string) error {
	return r.setStatus(ctx, id, bson.M{
		"status":       model.BackupSuccess,
		"size_bytes":   sizeBytes,
		"storage_path": storagePath,
	})
}

func (r *mongoBackupRepository) SetFailed(ctx context.Context, id string, errMsg string) error {
	return r.setStatus(ctx, id, bson.M{
		"status": model.BackupFailed,
		"error":  errMsg,
	})
}

func (r *mongoBackupRepository) setStatus(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	fields["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update backup record: %w", err)
	}
	if result.MatchedCount == 0 {
		return backupserrors.ErrNotFound
	}
	return nil
}
