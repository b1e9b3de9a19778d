package service

import (
	"context"
	"errors"
	"fmt"

	auditservice "hotelier/internal/audit/service"
	roomserrors "hotelier/internal/rooms/errors"
	"hotelier/internal/rooms/repository"
	"hotelier/internal/rooms/validator"
	"hotelier/pkg/config"
	apperrors "hotelier/pkg/errors"
	"hotelier/pkg/model"
	"hotelier/pkg/sanitizer"
)

// ReservationIndex is the slice of reservation data the room service
// needs: delete protection and date-range occupancy. Implemented by the
// reservations repository.
type ReservationIndex interface {
	CountOpenByRoom(ctx context.Context, roomID string) (int64, error)
	RoomIDsWithActiveOverlap(ctx context.Context, hotelID string, from, to model.Date) (map[string]bool, error)
}

// HotelChecker verifies the parent hotel exists before a room is
// attached to it.
type HotelChecker interface {
	GetByID(ctx context.Context, id string) (*model.Hotel, error)
}

// RoomService is hotel-scoped for callers acting on behalf of a hotel:
// GetInHotel, Update and Delete report a room under another hotel as
// absent. GetByID is the unscoped lookup used by sibling services that
// resolve rooms by id alone.
type RoomService interface {
	Create(ctx context.Context, actor model.Actor, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetInHotel(ctx context.Context, hotelID, id string) (*model.Room, error)
	GetByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, actor model.Actor, hotelID, id string, updates *model.RoomUpdate) error
	Delete(ctx context.Context, actor model.Actor, hotelID, id string) error
	Availability(ctx context.Context, hotelID string, from, to model.Date) ([]*model.Room, error)
}

type roomService struct {
	repo         repository.RoomRepository
	reservations ReservationIndex
	hotels       HotelChecker
	validator    *validator.RoomValidator
	audit        auditservice.AuditService
	cfg          *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	reservations ReservationIndex,
	hotels HotelChecker,
	validator *validator.RoomValidator,
	audit auditservice.AuditService,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:         repo,
		reservations: reservations,
		hotels:       hotels,
		validator:    validator,
		audit:        audit,
		cfg:          cfg,
	}
}

func (s *roomService) Create(ctx context.Context, actor model.Actor, room *model.Room) error {
	if !actor.Role.Can(model.CapRoomWrite) {
		return apperrors.Forbidden("Role is not allowed to manage rooms")
	}

	s.sanitize(room)
	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}
	if err := s.checkCapacityGuard(room.Capacity, room.ConfirmCapacity); err != nil {
		return err
	}

	if _, err := s.hotels.GetByID(ctx, room.HotelID); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room", "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.audit.Record(ctx, actor, "room.created", room.HotelID, map[string]string{
		"room_id": room.ID,
		"type":    room.Type,
	})

	s.cfg.Log.Info("Room created successfully", "id", room.ID, "hotel_id", room.HotelID)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}

// GetInHotel loads a room and hides it when it belongs to a different
// hotel, so ids cannot be probed across hotels.
func (s *roomService) GetInHotel(ctx context.Context, hotelID, id string) (*model.Room, error) {
	if hotelID == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	room, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room.HotelID != hotelID {
		return nil, apperrors.NotFoundWithID("Room", id)
	}

	return room, nil
}

func (s *roomService) GetByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Room, int64, error) {
	if hotelID == "" {
		return nil, 0, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	count, err := s.repo.CountByHotel(ctx, hotelID)
	if err != nil {
		s.cfg.Log.Error("Failed to count rooms", "hotel_id", hotelID, "error", err)
		return nil, 0, apperrors.Internal("Failed to count rooms", err)
	}

	rooms, err := s.repo.FindByHotel(ctx, hotelID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms", "hotel_id", hotelID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve rooms", err)
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, actor model.Actor, hotelID, id string, updates *model.RoomUpdate) error {
	if !actor.Role.Can(model.CapRoomWrite) {
		return apperrors.Forbidden("Role is not allowed to manage rooms")
	}
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	existing, err := s.GetInHotel(ctx, hotelID, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeRoomUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Room validation failed", "id", id, "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}
	if updates.Capacity != nil {
		if err := s.checkCapacityGuard(merged.Capacity, updates.ConfirmCapacity); err != nil {
			return err
		}
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to update room", "id", id, "error", err)
		return apperrors.Internal("Failed to update room", err)
	}

	s.audit.Record(ctx, actor, "room.updated", existing.HotelID, map[string]string{
		"room_id": id,
	})

	s.cfg.Log.Info("Room updated successfully", "id", id)
	return nil
}

func (s *roomService) Delete(ctx context.Context, actor model.Actor, hotelID, id string) error {
	if !actor.Role.Can(model.CapRoomDelete) {
		return apperrors.Forbidden("Role is not allowed to delete rooms")
	}
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	existing, err := s.GetInHotel(ctx, hotelID, id)
	if err != nil {
		return err
	}

	open, err := s.reservations.CountOpenByRoom(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to check room reservations", err)
	}
	if open > 0 {
		return apperrors.RoomInUse(id, open)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		return apperrors.Internal("Failed to delete room", err)
	}

	s.audit.Record(ctx, actor, "room.deleted", existing.HotelID, map[string]string{
		"room_id": id,
	})

	s.cfg.Log.Info("Room deleted successfully", "id", id)
	return nil
}

// Availability lists rooms of a hotel that are operator-available and have
// no active reservation overlapping [from, to).
func (s *roomService) Availability(ctx context.Context, hotelID string, from, to model.Date) ([]*model.Room, error) {
	if hotelID == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}
	if from.IsZero() || to.IsZero() {
		return nil, apperrors.InvalidInput("Both from and to dates are required")
	}
	if !from.Before(to) {
		return nil, apperrors.Validation("to must be after from", map[string]any{
			"from": from.String(),
			"to":   to.String(),
		})
	}

	const maxRooms = 1000
	rooms, err := s.repo.FindByHotel(ctx, hotelID, maxRooms, 0)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}

	occupied, err := s.reservations.RoomIDsWithActiveOverlap(ctx, hotelID, from, to)
	if err != nil {
		return nil, apperrors.Internal("Failed to check room occupancy", err)
	}

	available := make([]*model.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.IsAvailable && !occupied[room.ID] {
			available = append(available, room)
		}
	}

	return available, nil
}

// --- Helpers ---

func (s *roomService) sanitize(r *model.Room) {
	r.Type = sanitizer.TrimAndNormalize(r.Type)
	r.Description = sanitizer.TrimAndNormalize(r.Description)
}

// checkCapacityGuard rejects suspicious capacities unless explicitly
// confirmed. Typo protection for fat-fingered "100" vs "10".
func (s *roomService) checkCapacityGuard(capacity int, confirmed bool) error {
	if capacity > s.cfg.CapacityConfirmThreshold && !confirmed {
		return apperrors.Validation(
			fmt.Sprintf("Capacity %d exceeds %d and requires confirm_capacity", capacity, s.cfg.CapacityConfirmThreshold),
			map[string]any{
				"capacity":  capacity,
				"threshold": s.cfg.CapacityConfirmThreshold,
			},
		)
	}
	return nil
}

func (s *roomService) mergeRoomUpdates(existing *model.Room, updates *model.RoomUpdate) *model.Room {
	merged := *existing

	if updates.Type != nil {
		merged.Type = *updates.Type
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.IsAvailable != nil {
		merged.IsAvailable = *updates.IsAvailable
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}

	return &merged
}
