package model

import "time"

// BackupStatus is the lifecycle state of a backup run.
type BackupStatus string

const (
	BackupQueued  BackupStatus = "queued"
	BackupRunning BackupStatus = "running"
	BackupSuccess BackupStatus = "success"
	BackupFailed  BackupStatus = "failed"
)

// BackupType distinguishes hotel-scoped snapshots from full-system ones.
type BackupType string

const (
	BackupHotel      BackupType = "hotel"
	BackupFullSystem BackupType = "full_system"
)

// BackupRecord tracks one snapshot run. SizeBytes and StoragePath stay empty
// until the run succeeds. Status transitions are owned exclusively by the
// exporter that created the record.
type BackupRecord struct {
	ID        string       `json:"id" bson:"_id"`
	Type      BackupType   `json:"type" bson:"type"`
	HotelID   string       `json:"hotel_id,omitempty" bson:"hotel_id,omitempty"`
	Status    BackupStatus `json:"status" bson:"status"`
	SizeBytes int64        `json:"size_bytes,omitempty" bson:"size_bytes,omitempty"`
	// StoragePath is the archive location on the backup volume.
	StoragePath string    `json:"storage_path,omitempty" bson:"storage_path,omitempty"`
	Error       string    `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
