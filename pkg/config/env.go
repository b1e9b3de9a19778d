package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort = "PORT"

	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvCapacityConfirmThreshold = "CAPACITY_CONFIRM_THRESHOLD"
	EnvRoomLockTTL              = "ROOM_LOCK_TTL"

	EnvBackupDir        = "BACKUP_DIR"
	EnvBackupWorkers    = "BACKUP_WORKERS"
	EnvBackupJobTimeout = "BACKUP_JOB_TIMEOUT"

	EnvKafkaBrokers    = "KAFKA_BROKERS"
	EnvKafkaAuditTopic = "KAFKA_AUDIT_TOPIC"
)
