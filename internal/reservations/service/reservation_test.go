package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"hotelier/internal/reservations/repository"
	"hotelier/internal/reservations/validator"
	"hotelier/pkg/config"
	mongotx "hotelier/pkg/db/mongo"
	apperrors "hotelier/pkg/errors"
	"hotelier/pkg/logger"
	"hotelier/pkg/model"
)

const (
	testHotelID = "64a000000000000000000001"
	testRoomID  = "64a000000000000000000002"
	testResID   = "64a000000000000000000003"
)

// Mock repository for testing
type mockReservationRepository struct {
	createFunc                func(ctx context.Context, reservation *model.Reservation) error
	findByIDFunc              func(ctx context.Context, id string) (*model.Reservation, error)
	findFunc                  func(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Reservation, error)
	countFunc                 func(ctx context.Context, filter repository.ListFilter) (int64, error)
	updateFunc                func(ctx context.Context, id string, reservation *model.Reservation) (*mongo.UpdateResult, error)
	updateStatusFunc          func(ctx context.Context, id string, status model.ReservationStatus) error
	deleteFunc                func(ctx context.Context, id string) error
	findActiveOverlappingFunc func(ctx context.Context, roomID string, checkIn, checkOut model.Date) ([]*model.Reservation, error)
}

func (m *mockReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, reservation)
	}
	reservation.ID = testResID
	return nil
}

func (m *mockReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockReservationRepository) Find(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Reservation, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter, limit, offset)
	}
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) Count(ctx context.Context, filter repository.ListFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockReservationRepository) Update(ctx context.Context, id string, reservation *model.Reservation) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, reservation)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockReservationRepository) UpdateStatus(ctx context.Context, id string, status model.ReservationStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockReservationRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockReservationRepository) FindActiveOverlapping(ctx context.Context, roomID string, checkIn, checkOut model.Date) ([]*model.Reservation, error) {
	if m.findActiveOverlappingFunc != nil {
		return m.findActiveOverlappingFunc(ctx, roomID, checkIn, checkOut)
	}
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) CountOpenByRoom(ctx context.Context, roomID string) (int64, error) {
	return 0, nil
}

func (m *mockReservationRepository) RoomIDsWithActiveOverlap(ctx context.Context, hotelID string, from, to model.Date) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (m *mockReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockRoomLockRepository struct {
	createFunc func(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error)
	deleteFunc func(ctx context.Context, lockID string) error

	created []string
	deleted []string
}

func (m *mockRoomLockRepository) Create(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error) {
	m.created = append(m.created, lock.ID)
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockRoomLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

type mockRoomReader struct {
	getByIDFunc func(ctx context.Context, id string) (*model.Room, error)
}

func (m *mockRoomReader) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Room{
		ID:          testRoomID,
		HotelID:     testHotelID,
		Type:        "double",
		Capacity:    2,
		IsAvailable: true,
	}, nil
}

type mockAuditService struct {
	actions  []string
	metadata []map[string]string
}

func (m *mockAuditService) Record(ctx context.Context, actor model.Actor, action string, hotelID string, metadata map[string]string) {
	m.actions = append(m.actions, action)
	m.metadata = append(m.metadata, metadata)
}

func (m *mockAuditService) List(ctx context.Context, actor model.Actor, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditLogEntry, int64, error) {
	return nil, 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		RoomLockTTL: time.Minute,
	}
}

func newTestService(repo *mockReservationRepository, locks *mockRoomLockRepository, rooms *mockRoomReader, audit *mockAuditService) *reservationService {
	cfg := testConfig()
	return &reservationService{
		repo:      repo,
		lockRepo:  locks,
		rooms:     rooms,
		validator: validator.NewReservationValidator(cfg.Log),
		audit:     audit,
		cfg:       cfg,
	}
}

func pendingReservation() *model.Reservation {
	return &model.Reservation{
		HotelID:   testHotelID,
		RoomID:    testRoomID,
		GuestName: "Dana Levi",
		CheckIn:   model.Date("2025-01-10"),
		CheckOut:  model.Date("2025-01-13"),
		Guests:    2,
	}
}

func duplicateKeyErr() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	}
}

func TestCreate_PendingSkipsRoomLock(t *testing.T) {
	repo := &mockReservationRepository{}
	locks := &mockRoomLockRepository{}
	audit := &mockAuditService{}
	svc := newTestService(repo, locks, &mockRoomReader{}, audit)

	reservation := pendingReservation()
	warnings, err := svc.Create(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, reservation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if reservation.Status != model.StatusPending {
		t.Errorf("expected defaulted pending status, got %s", reservation.Status)
	}
	if len(locks.created) != 0 {
		t.Errorf("pending reservation must not take a room lock, took %v", locks.created)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "reservation.created" {
		t.Errorf("expected reservation.created audit action, got %v", audit.actions)
	}
}

func TestCreate_ImportedNeedsImportCapability(t *testing.T) {
	svc := newTestService(&mockReservationRepository{}, &mockRoomLockRepository{}, &mockRoomReader{}, &mockAuditService{})

	reservation := pendingReservation()
	reservation.Status = model.StatusCheckedOut

	_, err := svc.Create(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, reservation)
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN for receptionist import, got %v", err)
	}
}

func TestCreate_ImportedRecordsImportAction(t *testing.T) {
	audit := &mockAuditService{}
	svc := newTestService(&mockReservationRepository{}, &mockRoomLockRepository{}, &mockRoomReader{}, audit)

	reservation := pendingReservation()
	reservation.Status = model.StatusCheckedOut

	_, err := svc.Create(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, reservation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "reservation.imported" {
		t.Errorf("expected reservation.imported audit action, got %v", audit.actions)
	}
}

func TestCreate_ActiveReservationTakesAndReleasesLock(t *testing.T) {
	locks := &mockRoomLockRepository{}
	svc := newTestService(&mockReservationRepository{}, locks, &mockRoomReader{}, &mockAuditService{})

	reservation := pendingReservation()
	reservation.Status = model.StatusConfirmed

	_, err := svc.Create(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, reservation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantLock := "room_lock_" + testRoomID
	if len(locks.created) != 1 || locks.created[0] != wantLock {
		t.Errorf("expected lock %s to be taken, got %v", wantLock, locks.created)
	}
	if len(locks.deleted) != 1 || locks.deleted[0] != wantLock {
		t.Errorf("expected lock %s to be released, got %v", wantLock, locks.deleted)
	}
}

func TestCreate_OverlapConflict(t *testing.T) {
	repo := &mockReservationRepository{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, checkIn, checkOut model.Date) ([]*model.Reservation, error) {
			return []*model.Reservation{
				{
					ID:       "64a0000000000000000000ff",
					RoomID:   roomID,
					CheckIn:  model.Date("2025-01-12"),
					CheckOut: model.Date("2025-01-15"),
					Status:   model.StatusConfirmed,
				},
			}, nil
		},
	}
	locks := &mockRoomLockRepository{}
	svc := newTestService(repo, locks, &mockRoomReader{}, &mockAuditService{})

	reservation := pendingReservation()
	reservation.Status = model.StatusConfirmed

	_, err := svc.Create(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, reservation)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if len(locks.deleted) != 1 {
		t.Errorf("lock must be released on conflict, deleted %v", locks.deleted)
	}
}

func TestCreate_TouchingRangesDoNotConflict(t *testing.T) {
	// Existing stay ends the day the new one starts; half-open ranges
	// make checkout day and check-in day shareable.
	repo := &mockReservationRepository{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, checkIn, checkOut model.Date) ([]*model.Reservation, error) {
			return []*model.Reservation{
				{
					ID:       "64a0000000000000000000ff",
					RoomID:   roomID,
					CheckIn:  model.Date("2025-01-07"),
					CheckOut: model.Date("2025-01-10"),
					Status:   model.StatusConfirmed,
				},
			}, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockRoomReader{}, &mockAuditService{})

	reservation := pendingReservation()
	reservation.Status = model.StatusConfirmed

	if _, err := svc.Create(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, reservation); err != nil {
		t.Fatalf("touching ranges must not conflict: %v", err)
	}
}

func TestCreate_HeldLockIsConflict(t *testing.T) {
	locks := &mockRoomLockRepository{
		createFunc: func(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error) {
			return nil, duplicateKeyErr()
		},
	}
	svc := newTestService(&mockReservationRepository{}, locks, &mockRoomReader{}, &mockAuditService{})

	reservation := pendingReservation()
	reservation.Status = model.StatusConfirmed

	_, err := svc.Create(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, reservation)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected CONFLICT while lock held, got %v", err)
	}
}

func TestCreate_UnavailableRoomRejectsActive(t *testing.T) {
	rooms := &mockRoomReader{
		getByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return &model.Room{ID: testRoomID, HotelID: testHotelID, Capacity: 2, IsAvailable: false}, nil
		},
	}
	svc := newTestService(&mockReservationRepository{}, &mockRoomLockRepository{}, rooms, &mockAuditService{})

	reservation := pendingReservation()
	reservation.Status = model.StatusConfirmed

	_, err := svc.Create(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, reservation)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected CONFLICT for unavailable room, got %v", err)
	}
}

func TestCreate_RoomInDifferentHotel(t *testing.T) {
	rooms := &mockRoomReader{
		getByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return &model.Room{ID: testRoomID, HotelID: "64a0000000000000000000aa", Capacity: 2, IsAvailable: true}, nil
		},
	}
	svc := newTestService(&mockReservationRepository{}, &mockRoomLockRepository{}, rooms, &mockAuditService{})

	_, err := svc.Create(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, pendingReservation())
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR for cross-hotel room, got %v", err)
	}
}

func TestCreate_GuestCountWarning(t *testing.T) {
	svc := newTestService(&mockReservationRepository{}, &mockRoomLockRepository{}, &mockRoomReader{}, &mockAuditService{})

	reservation := pendingReservation()
	reservation.Guests = 5

	warnings, err := svc.Create(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, reservation)
	if err != nil {
		t.Fatalf("over-capacity guest count must not block: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
}

func TestCreate_WalkInRequiresGuestName(t *testing.T) {
	svc := newTestService(&mockReservationRepository{}, &mockRoomLockRepository{}, &mockRoomReader{}, &mockAuditService{})

	reservation := pendingReservation()
	reservation.GuestName = ""

	_, err := svc.Create(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, reservation)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR for anonymous walk-in, got %v", err)
	}
}

func TestUpdate_TerminalReservationIsFrozen(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.Status = model.StatusCheckedOut
			return r, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockRoomReader{}, &mockAuditService{})

	guests := 3
	_, err := svc.Update(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, testHotelID, testResID, &model.ReservationUpdate{Guests: &guests})
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected CONFLICT updating checked_out reservation, got %v", err)
	}
}

func TestUpdate_DateChangeOnConfirmedReverifiesUnderLock(t *testing.T) {
	verified := false
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.Status = model.StatusConfirmed
			return r, nil
		},
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, checkIn, checkOut model.Date) ([]*model.Reservation, error) {
			verified = true
			return nil, nil
		},
	}
	locks := &mockRoomLockRepository{}
	svc := newTestService(repo, locks, &mockRoomReader{}, &mockAuditService{})

	updates := &model.ReservationUpdate{
		CheckIn:  model.Date("2025-02-01"),
		CheckOut: model.Date("2025-02-04"),
	}
	if _, err := svc.Update(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, testHotelID, testResID, updates); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verified {
		t.Error("date change on a confirmed reservation must re-verify overlaps")
	}
	if len(locks.created) != 1 {
		t.Errorf("date change on a confirmed reservation must take the room lock, took %v", locks.created)
	}
}

func TestUpdate_GuestCountOnlySkipsLock(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.Status = model.StatusConfirmed
			return r, nil
		},
	}
	locks := &mockRoomLockRepository{}
	svc := newTestService(repo, locks, &mockRoomReader{}, &mockAuditService{})

	guests := 1
	if _, err := svc.Update(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, testHotelID, testResID, &model.ReservationUpdate{Guests: &guests}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locks.created) != 0 {
		t.Errorf("guest-count-only update must not take a lock, took %v", locks.created)
	}
}

func TestUpdate_PendingDateChangeChecksOverlap(t *testing.T) {
	// A pending reservation is not in the overlap index, but moving it
	// onto dates held by a confirmed stay must still be rejected.
	verified := false
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.Status = model.StatusPending
			return r, nil
		},
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, checkIn, checkOut model.Date) ([]*model.Reservation, error) {
			verified = true
			return []*model.Reservation{
				{
					ID:       "64a0000000000000000000ff",
					RoomID:   roomID,
					CheckIn:  model.Date("2025-02-01"),
					CheckOut: model.Date("2025-02-05"),
					Status:   model.StatusConfirmed,
				},
			}, nil
		},
	}
	locks := &mockRoomLockRepository{}
	svc := newTestService(repo, locks, &mockRoomReader{}, &mockAuditService{})

	updates := &model.ReservationUpdate{
		CheckIn:  model.Date("2025-02-02"),
		CheckOut: model.Date("2025-02-04"),
	}
	_, err := svc.Update(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, testHotelID, testResID, updates)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT moving pending reservation onto occupied dates, got %v", err)
	}
	if !verified {
		t.Error("date change on a pending reservation must consult the overlap index")
	}
	if len(locks.created) != 1 || len(locks.deleted) != 1 {
		t.Errorf("pending date change must take and release the room lock, created %v deleted %v", locks.created, locks.deleted)
	}
}

func TestUpdate_OtherHotelReservationIsNotFound(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			return r, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockRoomReader{}, &mockAuditService{})

	guests := 3
	_, err := svc.Update(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, "64a0000000000000000000bb", testResID, &model.ReservationUpdate{Guests: &guests})
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND for a reservation under another hotel, got %v", err)
	}
}

func TestGetByID_OtherHotelReservationIsNotFound(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			return r, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockRoomReader{}, &mockAuditService{})

	_, err := svc.GetByID(context.Background(), "64a0000000000000000000bb", testResID)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND for a reservation under another hotel, got %v", err)
	}
}

func TestTransition_PendingCannotCheckIn(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.Status = model.StatusPending
			return r, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockRoomReader{}, &mockAuditService{})

	_, _, err := svc.Transition(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, testHotelID, testResID, model.StatusCheckedIn)
	if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Errorf("expected INVALID_TRANSITION, got %v", err)
	}
}

func TestTransition_ReceptionistCannotCancelConfirmed(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.Status = model.StatusConfirmed
			return r, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockRoomReader{}, &mockAuditService{})

	_, _, err := svc.Transition(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, testHotelID, testResID, model.StatusCancelled)
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN, got %v", err)
	}
}

func TestTransition_ManagerCancelsConfirmed(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.Status = model.StatusConfirmed
			return r, nil
		},
	}
	audit := &mockAuditService{}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockRoomReader{}, audit)

	updated, _, err := svc.Transition(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, testHotelID, testResID, model.StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusCancelled {
		t.Errorf("expected cancelled, got %s", updated.Status)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "reservation.cancelled" {
		t.Errorf("expected reservation.cancelled audit action, got %v", audit.actions)
	}
}

func TestTransition_OtherHotelReservationIsNotFound(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.Status = model.StatusPending
			return r, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockRoomReader{}, &mockAuditService{})

	_, _, err := svc.Transition(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, "64a0000000000000000000bb", testResID, model.StatusConfirmed)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND for a reservation under another hotel, got %v", err)
	}
}

func TestTransition_AuditCarriesRoomAndUser(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.UserID = "guest-77"
			r.Status = model.StatusConfirmed
			return r, nil
		},
	}
	audit := &mockAuditService{}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockRoomReader{}, audit)

	_, _, err := svc.Transition(context.Background(), model.Actor{ID: "m1", Role: model.RoleManager}, testHotelID, testResID, model.StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(audit.metadata) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(audit.metadata))
	}
	meta := audit.metadata[0]
	if meta["reservation_id"] != testResID {
		t.Errorf("expected reservation_id %s, got %s", testResID, meta["reservation_id"])
	}
	if meta["room_id"] != testRoomID {
		t.Errorf("expected room_id %s, got %s", testRoomID, meta["room_id"])
	}
	if meta["user_id"] != "guest-77" {
		t.Errorf("expected user_id guest-77, got %s", meta["user_id"])
	}
}

func TestTransition_ConfirmRunsCriticalSection(t *testing.T) {
	verified := false
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.Status = model.StatusPending
			return r, nil
		},
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, checkIn, checkOut model.Date) ([]*model.Reservation, error) {
			verified = true
			return nil, nil
		},
	}
	locks := &mockRoomLockRepository{}
	svc := newTestService(repo, locks, &mockRoomReader{}, &mockAuditService{})

	_, _, err := svc.Transition(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, testHotelID, testResID, model.StatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verified {
		t.Error("confirming must re-verify overlaps inside the critical section")
	}
	if len(locks.created) != 1 || len(locks.deleted) != 1 {
		t.Errorf("confirming must take and release the room lock, created %v deleted %v", locks.created, locks.deleted)
	}
}

func TestTransition_OffDateCheckInWarns(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.Status = model.StatusConfirmed
			r.CheckIn = model.Date("2020-01-01")
			return r, nil
		},
	}
	locks := &mockRoomLockRepository{}
	svc := newTestService(repo, locks, &mockRoomReader{}, &mockAuditService{})

	_, warnings, err := svc.Transition(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, testHotelID, testResID, model.StatusCheckedIn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected off-date check-in warning, got %v", warnings)
	}
	if len(locks.created) != 0 {
		t.Errorf("check-in must not take a lock, took %v", locks.created)
	}
}

func TestDelete_RequiresCapability(t *testing.T) {
	svc := newTestService(&mockReservationRepository{}, &mockRoomLockRepository{}, &mockRoomReader{}, &mockAuditService{})

	err := svc.Delete(context.Background(), model.Actor{ID: "u1", Role: model.RoleReceptionist}, testHotelID, testResID)
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN, got %v", err)
	}
}

func TestDelete_RecordsAudit(t *testing.T) {
	repo := &mockReservationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			r := pendingReservation()
			r.ID = testResID
			r.Status = model.StatusCancelled
			return r, nil
		},
	}
	audit := &mockAuditService{}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockRoomReader{}, audit)

	if err := svc.Delete(context.Background(), model.Actor{ID: "a1", Role: model.RoleAdmin}, testHotelID, testResID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "reservation.deleted" {
		t.Errorf("expected reservation.deleted audit action, got %v", audit.actions)
	}
}
