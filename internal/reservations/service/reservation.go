package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	auditservice "hotelier/internal/audit/service"
	reserrors "hotelier/internal/reservations/errors"
	"hotelier/internal/reservations/repository"
	"hotelier/internal/reservations/validator"
	"hotelier/pkg/config"
	apperrors "hotelier/pkg/errors"
	"hotelier/pkg/model"
	"hotelier/pkg/sanitizer"
)

// RoomReader resolves the room a reservation points at. Implemented by
// the rooms service.
type RoomReader interface {
	GetByID(ctx context.Context, id string) (*model.Room, error)
}

// ReservationService owns the reservation lifecycle. Mutating operations
// return soft warnings (guest count above capacity, off-date check-in)
// alongside the result; warnings never block. By-id operations are
// hotel-scoped: a reservation that exists under a different hotel is
// reported as absent, never as belonging elsewhere.
type ReservationService interface {
	Create(ctx context.Context, actor model.Actor, reservation *model.Reservation) ([]string, error)
	GetByID(ctx context.Context, hotelID, id string) (*model.Reservation, error)
	List(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Reservation, int64, error)
	Update(ctx context.Context, actor model.Actor, hotelID, id string, updates *model.ReservationUpdate) ([]string, error)
	Transition(ctx context.Context, actor model.Actor, hotelID, id string, target model.ReservationStatus) (*model.Reservation, []string, error)
	Delete(ctx context.Context, actor model.Actor, hotelID, id string) error
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.RoomLockRepository
	rooms     RoomReader
	validator *validator.ReservationValidator
	audit     auditservice.AuditService
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.RoomLockRepository,
	rooms RoomReader,
	validator *validator.ReservationValidator,
	audit auditservice.AuditService,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		rooms:     rooms,
		validator: validator,
		audit:     audit,
		cfg:       cfg,
	}
}

func (s *reservationService) Create(ctx context.Context, actor model.Actor, reservation *model.Reservation) ([]string, error) {
	if !actor.Role.Can(model.CapReservationCreate) {
		return nil, apperrors.Forbidden("Role is not allowed to create reservations")
	}

	imported := reservation.Status != "" && reservation.Status != model.StatusPending
	if imported {
		if !actor.Role.Can(model.CapReservationImport) {
			return nil, apperrors.Forbidden("Role is not allowed to create reservations in a non-pending status")
		}
		if !model.ValidStatus(reservation.Status) {
			return nil, apperrors.InvalidInput("Unknown status: " + string(reservation.Status))
		}
	}

	s.applyDefaults(reservation)
	s.sanitize(reservation)
	if err := s.validate(reservation); err != nil {
		return nil, err
	}

	room, warnings, err := s.checkRoom(ctx, reservation)
	if err != nil {
		return nil, err
	}

	// Only active reservations enter the overlap index, so only they need
	// the per-room critical section.
	if reservation.Status.IsActive() {
		if !room.IsAvailable {
			return nil, apperrors.Conflict("Room is not available for booking").
				WithDetails(map[string]any{"room_id": room.ID})
		}

		err = s.withRoomLock(ctx, reservation.RoomID, func() error {
			return s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
				if err := s.verifyNoOverlap(sessCtx, reservation); err != nil {
					return err
				}
				if err := s.repo.Create(sessCtx, reservation); err != nil {
					return apperrors.Internal("Failed to create reservation", err)
				}
				return nil
			})
		})
	} else {
		err = s.repo.Create(ctx, reservation)
		if err != nil {
			err = apperrors.Internal("Failed to create reservation", err)
		}
	}
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation", "error", err)
		return nil, err
	}

	action := "reservation.created"
	if imported {
		action = "reservation.imported"
	}
	s.audit.Record(ctx, actor, action, reservation.HotelID, map[string]string{
		"reservation_id": reservation.ID,
		"room_id":        reservation.RoomID,
		"status":         string(reservation.Status),
		"check_in":       reservation.CheckIn.String(),
		"check_out":      reservation.CheckOut.String(),
	})

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"hotel_id", reservation.HotelID,
		"room_id", reservation.RoomID,
		"status", reservation.Status,
	)
	return warnings, nil
}

func (s *reservationService) GetByID(ctx context.Context, hotelID, id string) (*model.Reservation, error) {
	if hotelID == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	// A reservation under another hotel is indistinguishable from a
	// missing one, so ids cannot be probed across hotels.
	if reservation.HotelID != hotelID {
		return nil, apperrors.NotFoundWithID("Reservation", id)
	}

	return reservation, nil
}

func (s *reservationService) List(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) Update(ctx context.Context, actor model.Actor, hotelID, id string, updates *model.ReservationUpdate) ([]string, error) {
	if !actor.Role.Can(model.CapReservationUpdate) {
		return nil, apperrors.Forbidden("Role is not allowed to update reservations")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, hotelID, id)
	if err != nil {
		return nil, err
	}
	if existing.Status.IsTerminal() {
		return nil, apperrors.Conflict(
			fmt.Sprintf("Reservation is %s and can no longer be modified", existing.Status),
		)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeReservationUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	_, warnings, err := s.checkRoom(ctx, merged)
	if err != nil {
		return nil, err
	}

	datesChanged := merged.CheckIn != existing.CheckIn || merged.CheckOut != existing.CheckOut
	roomChanged := merged.RoomID != existing.RoomID

	// Active reservations re-enter the overlap index with their new
	// coordinates. Pending ones are not in the index yet, but an edit
	// into dates held by a confirmed stay is rejected now rather than
	// at confirm time.
	if (merged.Status.IsActive() || merged.Status == model.StatusPending) && (datesChanged || roomChanged) {
		err = s.withRoomLock(ctx, merged.RoomID, func() error {
			return s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
				if err := s.verifyNoOverlap(sessCtx, merged); err != nil {
					return err
				}
				if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
					return apperrors.Internal("Failed to update reservation", err)
				}
				return nil
			})
		})
	} else {
		if _, updateErr := s.repo.Update(ctx, id, merged); updateErr != nil {
			err = apperrors.Internal("Failed to update reservation", updateErr)
		}
	}
	if err != nil {
		s.cfg.Log.Error("Failed to update reservation", "id", id, "error", err)
		return nil, err
	}

	s.audit.Record(ctx, actor, "reservation.updated", existing.HotelID, map[string]string{
		"reservation_id": id,
	})

	s.cfg.Log.Info("Reservation updated successfully", "id", id)
	return warnings, nil
}

func (s *reservationService) Transition(ctx context.Context, actor model.Actor, hotelID, id string, target model.ReservationStatus) (*model.Reservation, []string, error) {
	if !actor.Role.Can(model.CapReservationTransition) {
		return nil, nil, apperrors.Forbidden("Role is not allowed to transition reservations")
	}
	if id == "" {
		return nil, nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.GetByID(ctx, hotelID, id)
	if err != nil {
		return nil, nil, err
	}

	if err := checkTransition(reservation.Status, target); err != nil {
		return nil, nil, err
	}

	// Cancelling a confirmed stay loses revenue; front desk cannot do it
	// alone.
	if target == model.StatusCancelled && reservation.Status == model.StatusConfirmed {
		if !actor.Role.Can(model.CapReservationCancelLate) {
			return nil, nil, apperrors.Forbidden("Role is not allowed to cancel a confirmed reservation")
		}
	}

	var warnings []string
	if target == model.StatusCheckedIn {
		if today := model.Today(); today != reservation.CheckIn {
			warnings = append(warnings, fmt.Sprintf(
				"check-in date is %s but today is %s", reservation.CheckIn, today,
			))
		}
	}

	// Confirming puts the reservation into the overlap index; the room
	// must be re-verified inside the critical section because another
	// reservation may have been confirmed since this one went pending.
	if target == model.StatusConfirmed {
		err = s.withRoomLock(ctx, reservation.RoomID, func() error {
			return s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
				if err := s.verifyNoOverlap(sessCtx, reservation); err != nil {
					return err
				}
				if err := s.repo.UpdateStatus(sessCtx, id, target); err != nil {
					return apperrors.Internal("Failed to update reservation status", err)
				}
				return nil
			})
		})
	} else {
		if statusErr := s.repo.UpdateStatus(ctx, id, target); statusErr != nil {
			err = apperrors.Internal("Failed to update reservation status", statusErr)
		}
	}
	if err != nil {
		s.cfg.Log.Error("Failed to transition reservation", "id", id, "target", target, "error", err)
		return nil, nil, err
	}

	previous := reservation.Status
	reservation.Status = target

	s.audit.Record(ctx, actor, "reservation."+string(target), reservation.HotelID, map[string]string{
		"reservation_id": id,
		"room_id":        reservation.RoomID,
		"user_id":        reservation.UserID,
		"from":           string(previous),
	})

	s.cfg.Log.Info("Reservation transitioned",
		"id", id,
		"from", previous,
		"to", target,
	)
	return reservation, warnings, nil
}

func (s *reservationService) Delete(ctx context.Context, actor model.Actor, hotelID, id string) error {
	if !actor.Role.Can(model.CapReservationDelete) {
		return apperrors.Forbidden("Role is not allowed to delete reservations")
	}
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, hotelID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		return apperrors.Internal("Failed to delete reservation", err)
	}

	s.audit.Record(ctx, actor, "reservation.deleted", existing.HotelID, map[string]string{
		"reservation_id": id,
		"status":         string(existing.Status),
	})

	s.cfg.Log.Info("Reservation deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *reservationService) applyDefaults(r *model.Reservation) {
	if r.Status == "" {
		r.Status = model.StatusPending
	}
}

func (s *reservationService) sanitize(r *model.Reservation) {
	r.GuestName = sanitizer.NormalizeName(r.GuestName)
	r.GuestEmail = sanitizer.NormalizeEmail(r.GuestEmail)
	r.SpecialRequests = sanitizer.TrimAndNormalize(r.SpecialRequests)
}

func (s *reservationService) validate(reservation *model.Reservation) error {
	if err := s.validator.Validate(reservation); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// checkRoom resolves the reservation's room and returns soft warnings.
// A room in a different hotel is a hard error; a guest count above the
// room capacity is only flagged.
func (s *reservationService) checkRoom(ctx context.Context, reservation *model.Reservation) (*model.Room, []string, error) {
	room, err := s.rooms.GetByID(ctx, reservation.RoomID)
	if err != nil {
		return nil, nil, err
	}

	if room.HotelID != reservation.HotelID {
		return nil, nil, apperrors.Validation("Room belongs to a different hotel", map[string]any{
			"room_id":       room.ID,
			"room_hotel_id": room.HotelID,
			"hotel_id":      reservation.HotelID,
		})
	}

	var warnings []string
	if reservation.Guests > room.Capacity {
		warnings = append(warnings, fmt.Sprintf(
			"guest count %d exceeds room capacity %d", reservation.Guests, room.Capacity,
		))
	}

	return room, warnings, nil
}

// verifyNoOverlap enforces the overlap invariant against active
// reservations of the room, ignoring the reservation itself.
func (s *reservationService) verifyNoOverlap(ctx context.Context, reservation *model.Reservation) error {
	existing, err := s.repo.FindActiveOverlapping(ctx, reservation.RoomID, reservation.CheckIn, reservation.CheckOut)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}

	for _, r := range existing {
		if r.ID == reservation.ID {
			continue
		}
		if model.RangesOverlap(r.CheckIn, r.CheckOut, reservation.CheckIn, reservation.CheckOut) {
			return apperrors.Conflict(fmt.Sprintf(
				"Reservation dates overlap with an existing reservation (%s - %s)",
				r.CheckIn, r.CheckOut,
			)).WithDetails(map[string]any{
				"conflicting_reservation_id": r.ID,
			})
		}
	}
	return nil
}

// withRoomLock runs fn while holding the room's advisory lock. A held
// lock means another request is mid-flight on the same room; callers get
// an immediate conflict rather than waiting.
func (s *reservationService) withRoomLock(ctx context.Context, roomID string, fn func() error) error {
	lockID := fmt.Sprintf("room_lock_%s", roomID)

	lock := &model.RoomLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.RoomLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("This room is currently being booked by another request. Please try again.")
		}
		return apperrors.Internal("Failed to acquire room lock", err)
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	return fn()
}

func (s *reservationService) mergeReservationUpdates(existing *model.Reservation, updates *model.ReservationUpdate) *model.Reservation {
	merged := *existing

	if updates.RoomID != "" {
		merged.RoomID = updates.RoomID
	}
	if updates.GuestName != "" {
		merged.GuestName = updates.GuestName
	}
	if updates.GuestEmail != "" {
		merged.GuestEmail = updates.GuestEmail
	}
	if !updates.CheckIn.IsZero() {
		merged.CheckIn = updates.CheckIn
	}
	if !updates.CheckOut.IsZero() {
		merged.CheckOut = updates.CheckOut
	}
	if updates.Guests != nil {
		merged.Guests = *updates.Guests
	}
	if updates.SpecialRequests != nil {
		merged.SpecialRequests = *updates.SpecialRequests
	}

	return &merged
}
