package service

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"hotelier/internal/hotels/validator"
	"hotelier/pkg/config"
	mongotx "hotelier/pkg/db/mongo"
	apperrors "hotelier/pkg/errors"
	"hotelier/pkg/logger"
	"hotelier/pkg/model"
)

const testHotelID = "64a000000000000000000001"

// Mock repository for testing
type mockHotelRepository struct {
	createFunc   func(ctx context.Context, hotel *model.Hotel) error
	findByIDFunc func(ctx context.Context, id string) (*model.Hotel, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Hotel, error)
	updateFunc   func(ctx context.Context, id string, hotel *model.Hotel) (*mongo.UpdateResult, error)
	deleteFunc   func(ctx context.Context, id string) error
	countFunc    func(ctx context.Context) (int64, error)
}

func (m *mockHotelRepository) Create(ctx context.Context, hotel *model.Hotel) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, hotel)
	}
	hotel.ID = testHotelID
	return nil
}

func (m *mockHotelRepository) FindByID(ctx context.Context, id string) (*model.Hotel, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Hotel{ID: id, Name: "Seaside", City: "Haifa"}, nil
}

func (m *mockHotelRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Hotel, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Hotel{}, nil
}

func (m *mockHotelRepository) Update(ctx context.Context, id string, hotel *model.Hotel) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, hotel)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockHotelRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockHotelRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockHotelRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockRoomCounter struct {
	countByHotelFunc func(ctx context.Context, hotelID string) (int64, error)
}

func (m *mockRoomCounter) CountByHotel(ctx context.Context, hotelID string) (int64, error) {
	if m.countByHotelFunc != nil {
		return m.countByHotelFunc(ctx, hotelID)
	}
	return 0, nil
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

func newTestService(repo *mockHotelRepository, rooms *mockRoomCounter, audit *mockAuditService) *hotelService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
	return &hotelService{
		repo:      repo,
		rooms:     rooms,
		validator: validator.NewHotelValidator(cfg.Log),
		audit:     audit,
		cfg:       cfg,
	}
}

func superAdmin() model.Actor {
	return model.Actor{ID: "sa1", Name: "Root", Role: model.RoleSuperAdmin}
}

func TestCreate_OnlySuperAdminManagesHotels(t *testing.T) {
	svc := newTestService(&mockHotelRepository{}, &mockRoomCounter{}, &mockAuditService{})

	hotel := &model.Hotel{Name: "Seaside", City: "Haifa"}
	err := svc.Create(context.Background(), model.Actor{ID: "a1", Role: model.RoleAdmin}, hotel)
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN for admin, got %v", err)
	}

	if err := svc.Create(context.Background(), superAdmin(), hotel); err != nil {
		t.Errorf("unexpected error for super_admin: %v", err)
	}
}

func TestCreate_InfersLocaleFromPhone(t *testing.T) {
	var saved *model.Hotel
	repo := &mockHotelRepository{
		createFunc: func(ctx context.Context, hotel *model.Hotel) error {
			hotel.ID = testHotelID
			saved = hotel
			return nil
		},
	}
	svc := newTestService(repo, &mockRoomCounter{}, &mockAuditService{})

	hotel := &model.Hotel{
		Name:         "Seaside",
		City:         "Haifa",
		ContactPhone: "+972501234567",
	}
	if err := svc.Create(context.Background(), superAdmin(), hotel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.TimeZone != "Asia/Jerusalem" {
		t.Errorf("expected inferred timezone Asia/Jerusalem, got %q", saved.TimeZone)
	}
	if saved.Country != "Israel" {
		t.Errorf("expected inferred country Israel, got %q", saved.Country)
	}
}

func TestCreate_ExplicitLocaleWins(t *testing.T) {
	var saved *model.Hotel
	repo := &mockHotelRepository{
		createFunc: func(ctx context.Context, hotel *model.Hotel) error {
			saved = hotel
			return nil
		},
	}
	svc := newTestService(repo, &mockRoomCounter{}, &mockAuditService{})

	hotel := &model.Hotel{
		Name:         "Seaside",
		City:         "Haifa",
		Country:      "Cyprus",
		TimeZone:     "Asia/Nicosia",
		ContactPhone: "+972501234567",
	}
	if err := svc.Create(context.Background(), superAdmin(), hotel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.TimeZone != "Asia/Nicosia" || saved.Country != "Cyprus" {
		t.Errorf("explicit locale must not be overwritten, got %q / %q", saved.TimeZone, saved.Country)
	}
}

func TestDelete_BlockedWhileRoomsExist(t *testing.T) {
	rooms := &mockRoomCounter{
		countByHotelFunc: func(ctx context.Context, hotelID string) (int64, error) {
			return 12, nil
		},
	}
	svc := newTestService(&mockHotelRepository{}, rooms, &mockAuditService{})

	err := svc.Delete(context.Background(), superAdmin(), testHotelID)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT while rooms exist, got %v", err)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Details["room_count"] != int64(12) {
		t.Errorf("expected room_count detail 12, got %v", appErr.Details)
	}
}

func TestDelete_EmptyHotelSucceeds(t *testing.T) {
	audit := &mockAuditService{}
	svc := newTestService(&mockHotelRepository{}, &mockRoomCounter{}, audit)

	if err := svc.Delete(context.Background(), superAdmin(), testHotelID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "hotel.deleted" {
		t.Errorf("expected hotel.deleted audit action, got %v", audit.actions)
	}
}
