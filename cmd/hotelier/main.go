package main

import (
	"context"

	auditHandler "hotelier/internal/audit/handler"
	auditRepository "hotelier/internal/audit/repository"
	auditService "hotelier/internal/audit/service"
	backupHandler "hotelier/internal/backups/handler"
	backupRepository "hotelier/internal/backups/repository"
	backupService "hotelier/internal/backups/service"
	hotelHandler "hotelier/internal/hotels/handler"
	hotelRepository "hotelier/internal/hotels/repository"
	hotelService "hotelier/internal/hotels/service"
	hotelValidator "hotelier/internal/hotels/validator"
	reservationHandler "hotelier/internal/reservations/handler"
	reservationRepository "hotelier/internal/reservations/repository"
	reservationService "hotelier/internal/reservations/service"
	reservationValidator "hotelier/internal/reservations/validator"
	roomHandler "hotelier/internal/rooms/handler"
	roomRepository "hotelier/internal/rooms/repository"
	roomService "hotelier/internal/rooms/service"
	roomValidator "hotelier/internal/rooms/validator"
	"hotelier/pkg/app"
	"hotelier/pkg/config"
	"hotelier/pkg/contracts"
	"hotelier/pkg/kafka"
	kafka_config "hotelier/pkg/kafka/config"
	kafkamiddleware "hotelier/pkg/kafka/middleware"
)

const ServiceName = "hotelier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Hotelier service")

	producer := initAuditProducer(cfg)
	handlers, backups := initServices(cfg, producer)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handlers...)
	serverApp.OnShutdown(backups.Drain)
	if producer != nil {
		serverApp.OnShutdown(func(context.Context) error { return producer.Close() })
	}
	serverApp.OnShutdown(cfg.Client.Close)
	serverApp.Run()
}

// initAuditProducer builds the Kafka mirror for the audit trail. The
// mirror is optional; with no brokers configured the trail is Mongo-only.
func initAuditProducer(cfg *config.Config) *kafka.Producer {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka audit mirror disabled, no brokers configured")
		return nil
	}

	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaAuditTopic, cfg.KafkaAuditTopic+".dlq")
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Kafka audit mirror enabled", "topic", cfg.KafkaAuditTopic)
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) ([]contracts.Handler, backupService.BackupService) {
	auditRepo := auditRepository.NewMongoAuditLogRepository(cfg)
	audit := auditService.NewAuditService(auditRepo, producer, cfg)

	hotelRepo := hotelRepository.NewMongoHotelRepository(cfg)
	roomRepo := roomRepository.NewMongoRoomRepository(cfg)
	reservationRepo := reservationRepository.NewMongoReservationRepository(cfg)
	lockRepo := reservationRepository.NewRoomLockRepository(cfg)

	hotels := hotelService.NewHotelService(
		hotelRepo,
		roomRepo,
		hotelValidator.NewHotelValidator(cfg.Log),
		audit,
		cfg,
	)
	rooms := roomService.NewRoomService(
		roomRepo,
		reservationRepo,
		hotels,
		roomValidator.NewRoomValidator(cfg.Log),
		audit,
		cfg,
	)
	reservations := reservationService.NewReservationService(
		reservationRepo,
		lockRepo,
		rooms,
		reservationValidator.NewReservationValidator(cfg.Log),
		audit,
		cfg,
	)
	backups := backupService.NewBackupService(
		backupRepository.NewMongoBackupRepository(cfg),
		backupRepository.NewSnapshotReader(cfg),
		hotels,
		audit,
		cfg,
	)

	cfg.Log.Info("Hotelier services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		hotelHandler.NewHotelHandler(hotels, cfg.Log),
		roomHandler.NewRoomHandler(rooms, cfg.Log),
		reservationHandler.NewReservationHandler(reservations, cfg.Log),
		auditHandler.NewAuditLogHandler(audit, cfg.Log),
		backupHandler.NewBackupHandler(backups, cfg.Log),
	}, backups
}
