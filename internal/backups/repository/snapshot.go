package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"hotelier/pkg/config"
	"hotelier/pkg/model"
)

// Snapshot is everything a backup archive contains, grouped by
// collection.
type Snapshot struct {
	Hotels       []*model.Hotel         `json:"hotels"`
	Rooms        []*model.Room          `json:"rooms"`
	Reservations []*model.Reservation   `json:"reservations"`
	AuditEntries []*model.AuditLogEntry `json:"audit_log"`
}

// SnapshotReader collects the export data set. It reads the live
// collections directly; consistency within one archive is best-effort,
// which is acceptable for operational snapshots.
type SnapshotReader interface {
	CollectHotel(ctx context.Context, hotelID string) (*Snapshot, error)
	CollectAll(ctx context.Context) (*Snapshot, error)
}

type mongoSnapshotReader struct {
	cfg *config.Config
	db  *mongo.Database
}

func NewSnapshotReader(cfg *config.Config) SnapshotReader {
	return &mongoSnapshotReader{
		cfg: cfg,
		db:  cfg.Client.Mongo.Database(cfg.MongoDatabaseName),
	}
}

func (r *mongoSnapshotReader) CollectHotel(ctx context.Context, hotelID string) (*Snapshot, error) {
	return r.collect(ctx, bson.M{"hotel_id": hotelID}, hotelID)
}

func (r *mongoSnapshotReader) CollectAll(ctx context.Context) (*Snapshot, error) {
	return r.collect(ctx, bson.M{}, "")
}

func (r *mongoSnapshotReader) collect(ctx context.Context, scoped bson.M, hotelID string) (*Snapshot, error) {
	snapshot := &Snapshot{}

	hotelFilter := bson.M{}
	if hotelID != "" {
		oid, err := objectIDFromHex(hotelID)
		if err != nil {
			return nil, err
		}
		hotelFilter["_id"] = oid
	}
	if err := decodeAll(ctx, r.db.Collection("Hotels"), hotelFilter, &snapshot.Hotels); err != nil {
		return nil, fmt.Errorf("failed to collect hotels: %w", err)
	}
	if err := decodeAll(ctx, r.db.Collection("Rooms"), scoped, &snapshot.Rooms); err != nil {
		return nil, fmt.Errorf("failed to collect rooms: %w", err)
	}
	if err := decodeAll(ctx, r.db.Collection("Reservations"), scoped, &snapshot.Reservations); err != nil {
		return nil, fmt.Errorf("failed to collect reservations: %w", err)
	}
	if err := decodeAll(ctx, r.db.Collection("Audit_log"), scoped, &snapshot.AuditEntries); err != nil {
		return nil, fmt.Errorf("failed to collect audit entries: %w", err)
	}

	return snapshot, nil
}

func objectIDFromHex(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid hotel ID format: %s", id)
	}
	return oid, nil
}

func decodeAll(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
