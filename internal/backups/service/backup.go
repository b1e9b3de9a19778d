package service

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	auditservice "hotelier/internal/audit/service"
	backupserrors "hotelier/internal/backups/errors"
	"hotelier/internal/backups/repository"
	"hotelier/pkg/config"
	apperrors "hotelier/pkg/errors"
	"hotelier/pkg/model"
	"hotelier/pkg/sanitizer"
)

// HotelChecker verifies the target hotel exists before a hotel-scoped
// backup is queued.
type HotelChecker interface {
	GetByID(ctx context.Context, id string) (*model.Hotel, error)
}

// BackupService queues export jobs and serves their results. Jobs run
// asynchronously on a bounded worker pool; Drain blocks until in-flight
// jobs finish during shutdown.
type BackupService interface {
	Create(ctx context.Context, actor model.Actor, backupType model.BackupType, hotelID string) (*model.BackupRecord, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.BackupRecord, error)
	GetAll(ctx context.Context, actor model.Actor, hotelID string, limit int, offset int64) ([]*model.BackupRecord, int64, error)
	ArchivePath(ctx context.Context, actor model.Actor, id string) (string, error)
	Drain(ctx context.Context) error
}

type backupService struct {
	repo     repository.BackupRepository
	snapshot repository.SnapshotReader
	hotels   HotelChecker
	audit    auditservice.AuditService
	cfg      *config.Config

	sem chan struct{}
	wg  sync.WaitGroup
}

func NewBackupService(
	repo repository.BackupRepository,
	snapshot repository.SnapshotReader,
	hotels HotelChecker,
	audit auditservice.AuditService,
	cfg *config.Config,
) BackupService {
	return &backupService{
		repo:     repo,
		snapshot: snapshot,
		hotels:   hotels,
		audit:    audit,
		cfg:      cfg,
		sem:      make(chan struct{}, cfg.BackupWorkers),
	}
}

func (s *backupService) Create(ctx context.Context, actor model.Actor, backupType model.BackupType, hotelID string) (*model.BackupRecord, error) {
	if !actor.Role.Can(model.CapBackupManage) {
		return nil, apperrors.Forbidden("Role is not allowed to manage backups")
	}

	var label string
	switch backupType {
	case model.BackupHotel:
		if hotelID == "" {
			return nil, apperrors.InvalidInput("hotel_id is required for hotel backups")
		}
		hotel, err := s.hotels.GetByID(ctx, hotelID)
		if err != nil {
			return nil, err
		}
		label = hotel.Name
	case model.BackupFullSystem:
		if !actor.Role.Can(model.CapBackupFullSystem) {
			return nil, apperrors.Forbidden("Role is not allowed to create full-system backups")
		}
		if hotelID != "" {
			return nil, apperrors.InvalidInput("hotel_id must be empty for full-system backups")
		}
		label = "full_system"
	default:
		return nil, apperrors.InvalidInput("type must be 'hotel' or 'full_system'")
	}

	record := &model.BackupRecord{
		ID:      uuid.New().String(),
		Type:    backupType,
		HotelID: hotelID,
		Status:  model.BackupQueued,
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		s.cfg.Log.Error("Failed to queue backup", "error", err)
		return nil, apperrors.Internal("Failed to queue backup", err)
	}

	s.audit.Record(ctx, actor, "backup.requested", hotelID, map[string]string{
		"backup_id": record.ID,
		"type":      string(backupType),
	})

	s.wg.Add(1)
	go s.run(record.ID, backupType, hotelID, label)

	s.cfg.Log.Info("Backup queued", "id", record.ID, "type", backupType, "hotel_id", hotelID)
	return record, nil
}

// run executes one export job. It owns the record's status from here on:
// queued -> running -> success|failed.
func (s *backupService) run(id string, backupType model.BackupType, hotelID, label string) {
	defer s.wg.Done()

	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	// Detached from the request; the job outlives the HTTP call that
	// queued it.
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.BackupJobTimeout)
	defer cancel()

	if err := s.repo.SetRunning(ctx, id); err != nil {
		s.cfg.Log.Error("Failed to mark backup running", "id", id, "error", err)
		return
	}

	path, size, err := s.export(ctx, id, backupType, hotelID, label)
	if err != nil {
		s.cfg.Log.Error("Backup failed", "id", id, "error", err)
		if setErr := s.repo.SetFailed(ctx, id, err.Error()); setErr != nil {
			s.cfg.Log.Error("Failed to mark backup failed", "id", id, "error", setErr)
		}
		return
	}

	if err := s.repo.SetSuccess(ctx, id, size, path); err != nil {
		s.cfg.Log.Error("Failed to mark backup successful", "id", id, "error", err)
		return
	}

	s.cfg.Log.Info("Backup completed", "id", id, "path", path, "size_bytes", size)
}

func (s *backupService) export(ctx context.Context, id string, backupType model.BackupType, hotelID, label string) (string, int64, error) {
	var snapshot *repository.Snapshot
	var err error
	if backupType == model.BackupHotel {
		snapshot, err = s.snapshot.CollectHotel(ctx, hotelID)
	} else {
		snapshot, err = s.snapshot.CollectAll(ctx)
	}
	if err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(s.cfg.BackupDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.zip", sanitizer.SanitizeFileLabel(label), time.Now().UTC().Format("20060102T150405Z"), id)
	path := filepath.Join(s.cfg.BackupDir, name)

	if err := writeArchive(path, snapshot); err != nil {
		// Don't leave half-written archives behind.
		_ = os.Remove(path)
		return "", 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to stat archive: %w", err)
	}

	return path, info.Size(), nil
}

// writeArchive lays the snapshot out as one JSON file per collection
// inside a zip.
func writeArchive(path string, snapshot *repository.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	files := []struct {
		name string
		data any
	}{
		{"hotels.json", snapshot.Hotels},
		{"rooms.json", snapshot.Rooms},
		{"reservations.json", snapshot.Reservations},
		{"audit_log.json", snapshot.AuditEntries},
	}

	for _, file := range files {
		w, err := zw.Create(file.name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", file.name, err)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(file.data); err != nil {
			return fmt.Errorf("failed to encode %s: %w", file.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return f.Close()
}

func (s *backupService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.BackupRecord, error) {
	if !actor.Role.Can(model.CapBackupManage) {
		return nil, apperrors.Forbidden("Role is not allowed to manage backups")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Backup ID cannot be empty")
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, backupserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Backup", id)
		}
		return nil, apperrors.Internal("Failed to retrieve backup", err)
	}

	return record, nil
}

func (s *backupService) GetAll(ctx context.Context, actor model.Actor, hotelID string, limit int, offset int64) ([]*model.BackupRecord, int64, error) {
	if !actor.Role.Can(model.CapBackupManage) {
		return nil, 0, apperrors.Forbidden("Role is not allowed to manage backups")
	}

	count, err := s.repo.Count(ctx, hotelID)
	if err != nil {
		s.cfg.Log.Error("Failed to count backups", "error", err)
		return nil, 0, apperrors.Internal("Failed to count backups", err)
	}

	records, err := s.repo.FindAll(ctx, hotelID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list backups", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve backups", err)
	}

	return records, count, nil
}

// ArchivePath returns the downloadable archive location. Anything but a
// successful run is unavailable, with the current status in the error.
func (s *backupService) ArchivePath(ctx context.Context, actor model.Actor, id string) (string, error) {
	record, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return "", err
	}

	if record.Status != model.BackupSuccess || record.StoragePath == "" {
		return "", apperrors.BackupUnavailable(string(record.Status))
	}

	return record.StoragePath, nil
}

// Drain waits for in-flight export jobs, bounded by ctx.
func (s *backupService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
