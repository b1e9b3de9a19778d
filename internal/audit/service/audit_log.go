package service

import (
	"context"
	"sync"
	"time"

	auditrepo "hotelier/internal/audit/repository"
	"hotelier/pkg/config"
	apperrors "hotelier/pkg/errors"
	"hotelier/pkg/kafka"
	"hotelier/pkg/model"
)

// AuditService records mutating actions and serves the audit trail.
// Record never fails the business operation that triggered it; failures
// are logged and surfaced to the caller for reporting only.
type AuditService interface {
	Record(ctx context.Context, actor model.Actor, action string, hotelID string, metadata map[string]string)
	List(ctx context.Context, actor model.Actor, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditLogEntry, int64, error)
}

type auditService struct {
	repo     auditrepo.AuditLogRepository
	producer *kafka.Producer
	cfg      *config.Config
}

// NewAuditService wires the trail. producer may be nil; the Kafka mirror
// is best-effort and optional.
func NewAuditService(repo auditrepo.AuditLogRepository, producer *kafka.Producer, cfg *config.Config) AuditService {
	return &auditService{
		repo:     repo,
		producer: producer,
		cfg:      cfg,
	}
}

func (s *auditService) Record(ctx context.Context, actor model.Actor, action string, hotelID string, metadata map[string]string) {
	entry := &model.AuditLogEntry{
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    action,
		HotelID:   hotelID,
		Metadata:  metadata,
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.cfg.Log.Error("Failed to record audit entry",
			"action", action,
			"actor_id", actor.ID,
			"hotel_id", hotelID,
			"error", err,
		)
		return
	}

	s.mirror(ctx, entry)
}

// mirror publishes the entry to the audit topic. Partitioning by hotel
// keeps per-hotel ordering for downstream consumers.
func (s *auditService) mirror(ctx context.Context, entry *model.AuditLogEntry) {
	if s.producer == nil {
		return
	}

	key := entry.HotelID
	if key == "" {
		key = "system"
	}

	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(entry).
		WithEventType(entry.Action).
		WithSource("hotelier").
		Build()

	if err := s.producer.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to mirror audit entry to Kafka",
			"action", entry.Action,
			"audit_id", entry.ID,
			"error", err,
		)
	}
}

func (s *auditService) List(ctx context.Context, actor model.Actor, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditLogEntry, int64, error) {
	if !actor.Role.Can(model.CapAuditRead) {
		return nil, 0, apperrors.Forbidden("Role is not allowed to read the audit trail")
	}

	var count int64
	var entries []*model.AuditLogEntry
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count audit entries", "error", errCount)
			errCount = apperrors.Internal("Failed to count audit entries", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		entries, errFind = s.repo.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list audit entries", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve audit entries", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return entries, count, nil
}
