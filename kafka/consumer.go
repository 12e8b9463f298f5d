package kafka

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rdioscaio/pane-a-tavola/middleware"
	"github.com/rdioscaio/pane-a-tavola/models"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

func InitConsumer(logger *zap.Logger) (sarama.Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Return.Errors = true
	config.Consumer.Retry.Backoff = 1 * time.Second

	brokers := []string{getEnv("KAFKA_BROKER", "localhost:9092")}

	consumer, err := sarama.NewConsumer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	logger.Info("Kafka consumer initialized")
	return consumer, nil
}

// StartConsumer ingests storefront tracking events published by the site
// into the same events table the HTTP tracking endpoint writes. It blocks
// until the partition consumer fails.
func StartConsumer(consumer sarama.Consumer, db *sql.DB, logger *zap.Logger) error {
	topic := getEnv("KAFKA_EVENTS_TOPIC", "storefront_events")
	partitionConsumer, err := consumer.ConsumePartition(topic, 0, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("failed to consume partition: %w", err)
	}
	defer partitionConsumer.Close()

	logger.Info("Kafka consumer started", zap.String("topic", topic))

	for {
		select {
		case message := <-partitionConsumer.Messages():
			if err := handleMessageWithRetry(message, db, logger, 3); err != nil {
				logger.Error("Failed to handle message after retries", zap.Error(err))
			}
		case err := <-partitionConsumer.Errors():
			logger.Error("Kafka consumer error", zap.Error(err))
		}
	}
}

func handleMessageWithRetry(message *sarama.ConsumerMessage, db *sql.DB, logger *zap.Logger, maxRetries int) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := handleMessage(message, db, logger)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("Retrying message handling",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func handleMessage(message *sarama.ConsumerMessage, db *sql.DB, logger *zap.Logger) error {
	// Extract trace context from Kafka message headers
	propagator := otel.GetTextMapPropagator()
	carrier := saramaHeaderCarrierConsumer(message.Headers)
	ctx := propagator.Extract(context.Background(), carrier)

	ctx, span := otel.Tracer("pane-admin-api").Start(ctx, "IngestStorefrontEvent")
	defer span.End()

	var event models.TrackEventRequest
	if err := json.Unmarshal(message.Value, &event); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if !models.ValidEventType(event.Type) {
		// Bad payloads are dropped, not retried.
		logger.Debug("Dropping event with unknown type", zap.String("type", event.Type))
		return nil
	}

	span.SetAttributes(attribute.String("event.type", event.Type))

	var extra *string
	if len(event.Extra) > 0 {
		s := string(event.Extra)
		extra = &s
	}

	_, err := db.ExecContext(ctx,
		"INSERT INTO events (type, product_slug, page_path, session_id, extra) VALUES ($1, $2, $3, $4, $5)",
		event.Type,
		nullable(event.ProductSlug),
		nullable(event.PagePath),
		nullable(event.SessionID),
		extra,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert event: %w", err)
	}

	middleware.RecordStorefrontEvent(event.Type)

	traceID := middleware.GetTraceID(ctx)
	logger.Info("Storefront event ingested",
		zap.String("trace_id", traceID),
		zap.String("type", event.Type),
	)
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// saramaHeaderCarrierConsumer implements the TextMapCarrier interface for Kafka headers (for consumer)
type saramaHeaderCarrierConsumer []*sarama.RecordHeader

func (c saramaHeaderCarrierConsumer) Get(key string) string {
	for _, h := range c {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c saramaHeaderCarrierConsumer) Set(key, value string) {}

func (c saramaHeaderCarrierConsumer) Keys() []string {
	keys := make([]string, len(c))
	for i, h := range c {
		keys[i] = string(h.Key)
	}
	return keys
}

var _ propagation.TextMapCarrier = saramaHeaderCarrierConsumer(nil)
