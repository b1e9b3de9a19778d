package service

import (
	"context"
	"errors"
	"sync"

	auditservice "hotelier/internal/audit/service"
	hotelserrors "hotelier/internal/hotels/errors"
	"hotelier/internal/hotels/repository"
	"hotelier/internal/hotels/validator"
	"hotelier/pkg/config"
	apperrors "hotelier/pkg/errors"
	"hotelier/pkg/locale"
	"hotelier/pkg/model"
	"hotelier/pkg/sanitizer"
)

// RoomCounter reports how many rooms a hotel still owns. Implemented by
// the rooms repository; declared here to keep the dependency pointing
// inward.
type RoomCounter interface {
	CountByHotel(ctx context.Context, hotelID string) (int64, error)
}

type HotelService interface {
	Create(ctx context.Context, actor model.Actor, hotel *model.Hotel) error
	GetByID(ctx context.Context, id string) (*model.Hotel, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Hotel, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, updates *model.HotelUpdate) error
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type hotelService struct {
	repo      repository.HotelRepository
	rooms     RoomCounter
	validator *validator.HotelValidator
	audit     auditservice.AuditService
	cfg       *config.Config
}

func NewHotelService(
	repo repository.HotelRepository,
	rooms RoomCounter,
	validator *validator.HotelValidator,
	audit auditservice.AuditService,
	cfg *config.Config,
) HotelService {
	return &hotelService{
		repo:      repo,
		rooms:     rooms,
		validator: validator,
		audit:     audit,
		cfg:       cfg,
	}
}

func (s *hotelService) Create(ctx context.Context, actor model.Actor, hotel *model.Hotel) error {
	if !actor.Role.Can(model.CapHotelWrite) {
		return apperrors.Forbidden("Role is not allowed to manage hotels")
	}

	s.sanitize(hotel)
	s.applyDefaults(hotel)
	if err := s.validator.Validate(hotel); err != nil {
		s.cfg.Log.Warn("Hotel validation failed", "error", err)
		return apperrors.Validation("Hotel validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, hotel); err != nil {
		s.cfg.Log.Error("Failed to create hotel", "error", err)
		return apperrors.Internal("Failed to create hotel", err)
	}

	s.audit.Record(ctx, actor, "hotel.created", hotel.ID, map[string]string{
		"name": hotel.Name,
		"city": hotel.City,
	})

	s.cfg.Log.Info("Hotel created successfully", "id", hotel.ID, "name", hotel.Name)
	return nil
}

func (s *hotelService) GetByID(ctx context.Context, id string) (*model.Hotel, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	hotel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, hotelserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Hotel", id)
		}
		if errors.Is(err, hotelserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid hotel ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve hotel", err)
	}

	return hotel, nil
}

func (s *hotelService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Hotel, int64, error) {
	var count int64
	var hotels []*model.Hotel
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count hotels", "error", errCount)
			errCount = apperrors.Internal("Failed to count hotels", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		hotels, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list hotels", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve hotels", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return hotels, count, nil
}

func (s *hotelService) Update(ctx context.Context, actor model.Actor, id string, updates *model.HotelUpdate) error {
	if !actor.Role.Can(model.CapHotelWrite) {
		return apperrors.Forbidden("Role is not allowed to manage hotels")
	}
	if id == "" {
		return apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Hotel update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeHotelUpdates(existing, updates)
	s.sanitize(merged)
	s.applyDefaults(merged)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Hotel validation failed", "id", id, "error", err)
		return apperrors.Validation("Hotel validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, hotelserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Hotel", id)
		}
		s.cfg.Log.Error("Failed to update hotel", "id", id, "error", err)
		return apperrors.Internal("Failed to update hotel", err)
	}

	s.audit.Record(ctx, actor, "hotel.updated", id, nil)

	s.cfg.Log.Info("Hotel updated successfully", "id", id)
	return nil
}

func (s *hotelService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if !actor.Role.Can(model.CapHotelWrite) {
		return apperrors.Forbidden("Role is not allowed to manage hotels")
	}
	if id == "" {
		return apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	roomCount, err := s.rooms.CountByHotel(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to check hotel rooms", err)
	}
	if roomCount > 0 {
		return apperrors.Conflict("Hotel still has rooms; delete or move them first").
			WithDetails(map[string]any{"room_count": roomCount})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, hotelserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Hotel", id)
		}
		if errors.Is(err, hotelserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid hotel ID format")
		}
		return apperrors.Internal("Failed to delete hotel", err)
	}

	s.audit.Record(ctx, actor, "hotel.deleted", id, nil)

	s.cfg.Log.Info("Hotel deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *hotelService) sanitize(h *model.Hotel) {
	h.Name = sanitizer.NormalizeName(h.Name)
	h.City = sanitizer.NormalizeCity(h.City)
	h.Country = sanitizer.NormalizeName(h.Country)
	h.ContactEmail = sanitizer.NormalizeEmail(h.ContactEmail)
	h.ContactPhone = sanitizer.NormalizePhone(h.ContactPhone)
}

// applyDefaults fills the timezone and country from the contact phone
// when the operator left them out.
func (s *hotelService) applyDefaults(h *model.Hotel) {
	if h.TimeZone == "" && h.ContactPhone != "" {
		h.TimeZone = locale.InferTimezoneFromPhone(h.ContactPhone)
	}
	if h.Country == "" && h.ContactPhone != "" {
		if country := locale.InferCountryFromPhone(h.ContactPhone); country != nil {
			h.Country = country.Name
		}
	}
}

func (s *hotelService) mergeHotelUpdates(existing *model.Hotel, updates *model.HotelUpdate) *model.Hotel {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.City != "" {
		merged.City = updates.City
	}
	if updates.Country != "" {
		merged.Country = updates.Country
	}
	if updates.ContactEmail != "" {
		merged.ContactEmail = updates.ContactEmail
	}
	if updates.ContactPhone != "" {
		merged.ContactPhone = updates.ContactPhone
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}

	return &merged
}
