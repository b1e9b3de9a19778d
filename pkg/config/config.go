package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hotelier/pkg/client"
	"hotelier/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// CapacityConfirmThreshold is the soft guard on room capacity: values
	// above it need an explicit operator confirmation flag in the request.
	CapacityConfirmThreshold int
	// RoomLockTTL bounds how long a per-room advisory lock may outlive its
	// owner before the TTL monitor reaps it.
	RoomLockTTL time.Duration

	BackupDir        string
	BackupWorkers    int
	BackupJobTimeout time.Duration

	// KafkaBrokers is empty when the audit mirror stream is disabled.
	KafkaBrokers    []string
	KafkaAuditTopic string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// Local development convenience; absence of a .env file is normal.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		CapacityConfirmThreshold: getEnvNum(EnvCapacityConfirmThreshold, DefaultCapacityConfirmThreshold),
		RoomLockTTL:              getEnvDuration(EnvRoomLockTTL, DefaultRoomLockTTL),

		BackupDir:        getEnvStr(EnvBackupDir, DefaultBackupDir),
		BackupWorkers:    getEnvNum(EnvBackupWorkers, DefaultBackupWorkers),
		BackupJobTimeout: getEnvDuration(EnvBackupJobTimeout, DefaultBackupJobTimeout),

		KafkaBrokers:    getEnvList(EnvKafkaBrokers),
		KafkaAuditTopic: getEnvStr(EnvKafkaAuditTopic, DefaultKafkaAuditTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout": cfg.MongoConnTimeout,
		"RateLimitWindow":  cfg.RateLimitWindow,
		"RequestTimeout":   cfg.RequestTimeout,
		"IdempotencyTTL":   cfg.IdempotencyTTL,
		"ReadTimeout":      cfg.ReadTimeout,
		"WriteTimeout":     cfg.WriteTimeout,
		"IdleTimeout":      cfg.IdleTimeout,
		"ShutdownTimeout":  cfg.ShutdownTimeout,
		"RoomLockTTL":      cfg.RoomLockTTL,
		"BackupJobTimeout": cfg.BackupJobTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.CapacityConfirmThreshold < 1 {
		errs = append(errs, fmt.Sprintf("CapacityConfirmThreshold must be at least 1, got: %d", cfg.CapacityConfirmThreshold))
	}
	if cfg.BackupWorkers < 1 {
		errs = append(errs, fmt.Sprintf("BackupWorkers must be at least 1, got: %d", cfg.BackupWorkers))
	}
	if cfg.BackupDir == "" {
		errs = append(errs, "BackupDir cannot be empty")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaAuditTopic == "" {
		errs = append(errs, "KafkaAuditTopic cannot be empty when KafkaBrokers is set")
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"capacity_confirm_threshold", cfg.CapacityConfirmThreshold,
		"room_lock_ttl", cfg.RoomLockTTL,
		"backup_dir", cfg.BackupDir,
		"backup_workers", cfg.BackupWorkers,
		"backup_job_timeout", cfg.BackupJobTimeout,
		"kafka_brokers", strings.Join(cfg.KafkaBrokers, ","),
		"kafka_audit_topic", cfg.KafkaAuditTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvNum(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
