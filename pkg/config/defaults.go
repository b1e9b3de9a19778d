package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hotelier"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Room capacities above this require an explicit confirm flag.
	DefaultCapacityConfirmThreshold = 100
	// Advisory room locks auto-expire so a crashed process cannot wedge a room.
	DefaultRoomLockTTL = 10 * time.Second

	DefaultBackupDir        = "/var/lib/hotelier/backups"
	DefaultBackupWorkers    = 2
	DefaultBackupJobTimeout = 5 * time.Minute

	DefaultKafkaAuditTopic = "hotelier.audit"

	DefaultPerPage = 20
	MaxPerPage     = 100
)
