package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelier/pkg/config"
	"hotelier/pkg/model"
)

const (
	CollectionName = "Audit_log"
)

// AuditLogRepository is append-plus-read only. There is deliberately no
// update or delete: the trail is immutable once written.
type AuditLogRepository interface {
	Insert(ctx context.Context, entry *model.AuditLogEntry) error
	Find(ctx context.Context, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditLogEntry, error)
	Count(ctx context.Context, filter model.AuditFilter) (int64, error)
}

type mongoAuditLogRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAuditLogRepository(cfg *config.Config) AuditLogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAuditLogRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAuditLogRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAuditLogRepository) Insert(ctx context.Context, entry *model.AuditLogEntry) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC().Truncate(time.Millisecond)
	}

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAuditLogRepository) Find(ctx context.Context, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditLogEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildAuditFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.AuditLogEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}

	return entries, nil
}

func (r *mongoAuditLogRepository) Count(ctx context.Context, filter model.AuditFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildAuditFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

func buildAuditFilter(filter model.AuditFilter) bson.M {
	query := bson.M{}

	if filter.HotelID != "" {
		query["hotel_id"] = filter.HotelID
	}
	if filter.ActorID != "" {
		query["actor_id"] = filter.ActorID
	}
	if filter.Action != "" {
		query["action"] = primitive.Regex{Pattern: regexEscape(filter.Action), Options: "i"}
	}

	timeFilter := bson.M{}
	if !filter.From.IsZero() {
		timeFilter["$gte"] = filter.From.Time()
	}
	if !filter.To.IsZero() {
		// To is inclusive of the whole day.
		timeFilter["$lt"] = filter.To.AddDays(1).Time()
	}
	if len(timeFilter) > 0 {
		query["timestamp"] = timeFilter
	}

	return query
}

var regexSpecials = `\.+*?()|[]{}^$`

func regexEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(regexSpecials); j++ {
			if s[i] == regexSpecials[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
