package kafka_middleware

import (
	"context"
	"time"

	"hotelier/pkg/kafka"
	"hotelier/pkg/logger"
)

// LoggingProducerMiddleware logs message publishing operations
func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		duration := time.Since(start)

		if err != nil {
			log.Error("Kafka publish failed",
				"topic", msg.Topic,
				"key", msg.Key,
				"event_id", msg.GetEventID(),
				"event_type", msg.GetEventType(),
				"duration_ms", duration.Milliseconds(),
				"error", err,
			)
		} else {
			log.Debug("Kafka message published",
				"topic", msg.Topic,
				"key", msg.Key,
				"event_id", msg.GetEventID(),
				"event_type", msg.GetEventType(),
				"duration_ms", duration.Milliseconds(),
			)
		}

		return err
	}
}
