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

	reserrors "hotelier/internal/reservations/errors"
	"hotelier/pkg/config"
	mongotx "hotelier/pkg/db/mongo"
	"hotelier/pkg/model"
)

const (
	CollectionName = "Reservations"
)

// ListFilter narrows reservation listings. Zero values mean no constraint.
type ListFilter struct {
	HotelID string
	RoomID  string
	UserID  string
	Status  model.ReservationStatus
	// From and To select reservations whose stay intersects [From, To).
	From model.Date
	To   model.Date
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	Find(ctx context.Context, filter ListFilter, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, id string, reservation *model.Reservation) (*mongo.UpdateResult, error)
	UpdateStatus(ctx context.Context, id string, status model.ReservationStatus) error
	Delete(ctx context.Context, id string) error
	FindActiveOverlapping(ctx context.Context, roomID string, checkIn, checkOut model.Date) ([]*model.Reservation, error)
	CountOpenByRoom(ctx context.Context, roomID string) (int64, error)
	RoomIDsWithActiveOverlap(ctx context.Context, hotelID string, from, to model.Date) (map[string]bool, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext must not be wrapped or transaction semantics break.
func (r *mongoReservationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) Find(ctx context.Context, filter ListFilter, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "check_in", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildListFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildListFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) Update(ctx context.Context, id string, reservation *model.Reservation) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"room_id":          reservation.RoomID,
			"guest_name":       reservation.GuestName,
			"guest_email":      reservation.GuestEmail,
			"check_in":         reservation.CheckIn,
			"check_out":        reservation.CheckOut,
			"guests":           reservation.Guests,
			"special_requests": reservation.SpecialRequests,
			"updated_at":       time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, reserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoReservationRepository) UpdateStatus(ctx context.Context, id string, status model.ReservationStatus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	if result.MatchedCount == 0 {
		return reserrors.ErrNotFound
	}

	return nil
}

func (r *mongoReservationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	if result.DeletedCount == 0 {
		return reserrors.ErrNotFound
	}

	return nil
}

// FindActiveOverlapping returns active reservations of the room whose
// half-open [check_in, check_out) intersects the given range. Dates are
// fixed-width ISO strings, so $lt/$gt compare correctly.
func (r *mongoReservationRepository) FindActiveOverlapping(ctx context.Context, roomID string, checkIn, checkOut model.Date) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_id":   roomID,
		"status":    bson.M{"$in": model.ActiveStatuses},
		"check_in":  bson.M{"$lt": checkOut},
		"check_out": bson.M{"$gt": checkIn},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping reservations: %w", err)
	}

	return reservations, nil
}

// CountOpenByRoom counts reservations of the room in any non-terminal
// status. Used for room delete protection.
func (r *mongoReservationRepository) CountOpenByRoom(ctx context.Context, roomID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_id": roomID,
		"status": bson.M{"$in": []model.ReservationStatus{
			model.StatusPending,
			model.StatusConfirmed,
			model.StatusCheckedIn,
		}},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count open reservations: %w", err)
	}
	return count, nil
}

// RoomIDsWithActiveOverlap returns the rooms of a hotel occupied by an
// active reservation somewhere in [from, to).
func (r *mongoReservationRepository) RoomIDsWithActiveOverlap(ctx context.Context, hotelID string, from, to model.Date) (map[string]bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"hotel_id":  hotelID,
		"status":    bson.M{"$in": model.ActiveStatuses},
		"check_in":  bson.M{"$lt": to},
		"check_out": bson.M{"$gt": from},
	}

	roomIDs, err := r.collection.Distinct(ctx, "room_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find occupied rooms: %w", err)
	}

	occupied := make(map[string]bool, len(roomIDs))
	for _, id := range roomIDs {
		if s, ok := id.(string); ok {
			occupied[s] = true
		}
	}
	return occupied, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func buildListFilter(filter ListFilter) bson.M {
	query := bson.M{}

	if filter.HotelID != "" {
		query["hotel_id"] = filter.HotelID
	}
	if filter.RoomID != "" {
		query["room_id"] = filter.RoomID
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if !filter.From.IsZero() {
		query["check_out"] = bson.M{"$gt": filter.From}
	}
	if !filter.To.IsZero() {
		query["check_in"] = bson.M{"$lt": filter.To}
	}

	return query
}
