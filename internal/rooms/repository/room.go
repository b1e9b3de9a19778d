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

	roomserrors "hotelier/internal/rooms/errors"
	"hotelier/pkg/config"
	mongotx "hotelier/pkg/db/mongo"
	"hotelier/pkg/model"
)

const (
	CollectionName = "Rooms"
)

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	FindByID(ctx context.Context, id string) (*model.Room, error)
	FindByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Room, error)
	Update(ctx context.Context, id string, room *model.Room) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	CountByHotel(ctx context.Context, hotelID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoRoomRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoRoomRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRoomRepository) Create(ctx context.Context, room *model.Room) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	room.CreatedAt = now
	room.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, room)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		room.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}

	var room model.Room
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return &room, nil
}

func (r *mongoRoomRepository) FindByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "type", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"hotel_id": hotelID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*model.Room
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	return rooms, nil
}

func (r *mongoRoomRepository) Update(ctx context.Context, id string, room *model.Room) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"type":         room.Type,
			"price":        room.Price,
			"capacity":     room.Capacity,
			"is_available": room.IsAvailable,
			"description":  room.Description,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, roomserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoRoomRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	if result.DeletedCount == 0 {
		return roomserrors.ErrNotFound
	}

	return nil
}

func (r *mongoRoomRepository) CountByHotel(ctx context.Context, hotelID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"hotel_id": hotelID})
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}

	return count, nil
}

func (r *mongoRoomRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
