package service

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"hotelier/internal/rooms/validator"
	"hotelier/pkg/config"
	mongotx "hotelier/pkg/db/mongo"
	apperrors "hotelier/pkg/errors"
	"hotelier/pkg/logger"
	"hotelier/pkg/model"
)

const (
	testHotelID = "64a000000000000000000001"
	testRoomID  = "64a000000000000000000002"
)

// Mock repository for testing
type mockRoomRepository struct {
	createFunc       func(ctx context.Context, room *model.Room) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Room, error)
	findByHotelFunc  func(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Room, error)
	updateFunc       func(ctx context.Context, id string, room *model.Room) (*mongo.UpdateResult, error)
	deleteFunc       func(ctx context.Context, id string) error
	countByHotelFunc func(ctx context.Context, hotelID string) (int64, error)
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, room)
	}
	room.ID = testRoomID
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Room{ID: id, HotelID: testHotelID, Type: "double", Capacity: 2, IsAvailable: true}, nil
}

func (m *mockRoomRepository) FindByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Room, error) {
	if m.findByHotelFunc != nil {
		return m.findByHotelFunc(ctx, hotelID, limit, offset)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) Update(ctx context.Context, id string, room *model.Room) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, room)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockRoomRepository) CountByHotel(ctx context.Context, hotelID string) (int64, error) {
	if m.countByHotelFunc != nil {
		return m.countByHotelFunc(ctx, hotelID)
	}
	return 0, nil
}

func (m *mockRoomRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockReservationIndex struct {
	countOpenByRoomFunc func(ctx context.Context, roomID string) (int64, error)
	overlapFunc         func(ctx context.Context, hotelID string, from, to model.Date) (map[string]bool, error)
}

func (m *mockReservationIndex) CountOpenByRoom(ctx context.Context, roomID string) (int64, error) {
	if m.countOpenByRoomFunc != nil {
		return m.countOpenByRoomFunc(ctx, roomID)
	}
	return 0, nil
}

func (m *mockReservationIndex) RoomIDsWithActiveOverlap(ctx context.Context, hotelID string, from, to model.Date) (map[string]bool, error) {
	if m.overlapFunc != nil {
		return m.overlapFunc(ctx, hotelID, from, to)
	}
	return map[string]bool{}, nil
}

type mockHotelChecker struct {
	getByIDFunc func(ctx context.Context, id string) (*model.Hotel, error)
}

func (m *mockHotelChecker) GetByID(ctx context.Context, id string) (*model.Hotel, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Hotel{ID: id, Name: "Test Hotel", City: "Tel Aviv"}, nil
}

type mockAuditService struct {
	actions []string
}

func (m *mockAuditService) Record(ctx context.Context, actor model.Actor, action string, hotelID string, metadata map[string]string) {
	m.actions = append(m.actions, action)
}

func (m *mockAuditService) List(ctx context.Context, actor model.Actor, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditLogEntry, int64, error) {
	return nil, 0, nil
}

func newTestService(repo *mockRoomRepository, reservations *mockReservationIndex, audit *mockAuditService) *roomService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		CapacityConfirmThreshold: 10,
	}
	return &roomService{
		repo:         repo,
		reservations: reservations,
		hotels:       &mockHotelChecker{},
		validator:    validator.NewRoomValidator(cfg.Log),
		audit:        audit,
		cfg:          cfg,
	}
}

func validRoom() *model.Room {
	return &model.Room{
		HotelID:     testHotelID,
		Type:        "double",
		Price:       120,
		Capacity:    2,
		IsAvailable: true,
	}
}

func TestCreate_RequiresRoomWrite(t *testing.T) {
	svc := newTestService(&mockRoomRepository{}, &mockReservationIndex{}, &mockAuditService{})

	err := svc.Create(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, validRoom())
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN for receptionist, got %v", err)
	}
}

func TestCreate_CapacityAboveThresholdNeedsConfirmation(t *testing.T) {
	svc := newTestService(&mockRoomRepository{}, &mockReservationIndex{}, &mockAuditService{})

	room := validRoom()
	room.Capacity = 100

	err := svc.Create(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, room)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for unconfirmed capacity 100, got %v", err)
	}

	room.ConfirmCapacity = true
	if err := svc.Create(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, room); err != nil {
		t.Errorf("confirmed capacity must pass, got %v", err)
	}
}

func TestCreate_CapacityAtThresholdPasses(t *testing.T) {
	audit := &mockAuditService{}
	svc := newTestService(&mockRoomRepository{}, &mockReservationIndex{}, audit)

	room := validRoom()
	room.Capacity = 10

	if err := svc.Create(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, room); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "room.created" {
		t.Errorf("expected room.created audit action, got %v", audit.actions)
	}
}

func TestUpdate_CapacityGuardAppliesToPatches(t *testing.T) {
	svc := newTestService(&mockRoomRepository{}, &mockReservationIndex{}, &mockAuditService{})

	capacity := 50
	err := svc.Update(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, testHotelID, testRoomID, &model.RoomUpdate{Capacity: &capacity})
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR for unconfirmed capacity patch, got %v", err)
	}
}

func TestDelete_BlockedByOpenReservations(t *testing.T) {
	reservations := &mockReservationIndex{
		countOpenByRoomFunc: func(ctx context.Context, roomID string) (int64, error) {
			return 3, nil
		},
	}
	svc := newTestService(&mockRoomRepository{}, reservations, &mockAuditService{})

	err := svc.Delete(context.Background(), model.Actor{ID: "a1", Role: model.RoleAdmin}, testHotelID, testRoomID)
	if !apperrors.IsCode(err, apperrors.CodeRoomInUse) {
		t.Fatalf("expected ROOM_IN_USE, got %v", err)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Details["open_reservations"] != int64(3) {
		t.Errorf("expected open_reservations detail 3, got %v", appErr.Details)
	}
}

func TestDelete_ManagerCannotDelete(t *testing.T) {
	svc := newTestService(&mockRoomRepository{}, &mockReservationIndex{}, &mockAuditService{})

	err := svc.Delete(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, testHotelID, testRoomID)
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN for manager delete, got %v", err)
	}
}

func TestDelete_FreeRoomSucceeds(t *testing.T) {
	audit := &mockAuditService{}
	svc := newTestService(&mockRoomRepository{}, &mockReservationIndex{}, audit)

	if err := svc.Delete(context.Background(), model.Actor{ID: "a1", Role: model.RoleAdmin}, testHotelID, testRoomID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "room.deleted" {
		t.Errorf("expected room.deleted audit action, got %v", audit.actions)
	}
}

func TestUpdate_OtherHotelRoomIsNotFound(t *testing.T) {
	svc := newTestService(&mockRoomRepository{}, &mockReservationIndex{}, &mockAuditService{})

	capacity := 3
	err := svc.Update(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, "64a0000000000000000000bb", testRoomID, &model.RoomUpdate{Capacity: &capacity})
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND for a room under another hotel, got %v", err)
	}
}

func TestDelete_OtherHotelRoomIsNotFound(t *testing.T) {
	audit := &mockAuditService{}
	svc := newTestService(&mockRoomRepository{}, &mockReservationIndex{}, audit)

	err := svc.Delete(context.Background(), model.Actor{ID: "a1", Role: model.RoleAdmin}, "64a0000000000000000000bb", testRoomID)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND for a room under another hotel, got %v", err)
	}
	if len(audit.actions) != 0 {
		t.Errorf("hidden room must not produce an audit entry, got %v", audit.actions)
	}
}

func TestGetInHotel_OtherHotelRoomIsNotFound(t *testing.T) {
	svc := newTestService(&mockRoomRepository{}, &mockReservationIndex{}, &mockAuditService{})

	_, err := svc.GetInHotel(context.Background(), "64a0000000000000000000bb", testRoomID)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND for a room under another hotel, got %v", err)
	}
}

func TestAvailability_FiltersOccupiedAndUnavailable(t *testing.T) {
	repo := &mockRoomRepository{
		findByHotelFunc: func(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Room, error) {
			return []*model.Room{
				{ID: "64a000000000000000000011", HotelID: hotelID, IsAvailable: true},
				{ID: "64a000000000000000000012", HotelID: hotelID, IsAvailable: true},
				{ID: "64a000000000000000000013", HotelID: hotelID, IsAvailable: false},
			}, nil
		},
	}
	reservations := &mockReservationIndex{
		overlapFunc: func(ctx context.Context, hotelID string, from, to model.Date) (map[string]bool, error) {
			return map[string]bool{"64a000000000000000000012": true}, nil
		},
	}
	svc := newTestService(repo, reservations, &mockAuditService{})

	rooms, err := svc.Availability(context.Background(), testHotelID, model.Date("2025-03-01"), model.Date("2025-03-05"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != "64a000000000000000000011" {
		t.Errorf("expected only the free available room, got %v", rooms)
	}
}

func TestAvailability_RejectsInvertedRange(t *testing.T) {
	svc := newTestService(&mockRoomRepository{}, &mockReservationIndex{}, &mockAuditService{})

	_, err := svc.Availability(context.Background(), testHotelID, model.Date("2025-03-05"), model.Date("2025-03-05"))
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR for empty range, got %v", err)
	}
}
