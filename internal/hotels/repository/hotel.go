package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	hotelserrors "hotelier/internal/hotels/errors"
	"hotelier/pkg/config"
	mongotx "hotelier/pkg/db/mongo"
	"hotelier/pkg/model"
)

const (
	CollectionName = "Hotels"
)

type HotelRepository interface {
	Create(ctx context.Context, hotel *model.Hotel) error
	FindByID(ctx context.Context, id string) (*model.Hotel, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Hotel, error)
	Update(ctx context.Context, id string, hotel *model.Hotel) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoHotelRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoHotelRepository(cfg *config.Config) HotelRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHotelRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext must not be wrapped or transaction semantics break.
func (r *mongoHotelRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoHotelRepository) Create(ctx context.Context, hotel *model.Hotel) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	hotel.CreatedAt = now
	hotel.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, hotel)
	if err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		hotel.ID = oid.Hex()
	}
	return nil
}

func (r *mongoHotelRepository) FindByID(ctx context.Context, id string) (*model.Hotel, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", hotelserrors.ErrInvalidID, id)
	}

	var hotel model.Hotel
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&hotel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, hotelserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find hotel: %w", err)
	}

	return &hotel, nil
}

func (r *mongoHotelRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Hotel, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find hotels: %w", err)
	}
	defer cursor.Close(ctx)

	var hotels []*model.Hotel
	if err = cursor.All(ctx, &hotels); err != nil {
		return nil, fmt.Errorf("failed to decode hotels: %w", err)
	}

	return hotels, nil
}

func (r *mongoHotelRepository) Update(ctx context.Context, id string, hotel *model.Hotel) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", hotelserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":          hotel.Name,
			"city":          hotel.City,
			"country":       hotel.Country,
			"contact_email": hotel.ContactEmail,
			"contact_phone": hotel.ContactPhone,
			"time_zone":     hotel.TimeZone,
			"updated_at":    time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update hotel: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, hotelserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoHotelRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", hotelserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete hotel: %w", err)
	}

	if result.DeletedCount == 0 {
		return hotelserrors.ErrNotFound
	}

	return nil
}

func (r *mongoHotelRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count hotels: %w", err)
	}

	return count, nil
}

func (r *mongoHotelRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
