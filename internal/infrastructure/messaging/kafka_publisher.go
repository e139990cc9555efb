package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/credora/credit-analysis/internal/domain/event"
	pkgkafka "github.com/credora/credit-analysis/pkg/kafka"
)

// KafkaEventPublisher implements port.EventPublisher by writing events to
// Kafka. Each event type is its own topic, so consumers subscribe to
// exactly the outcomes they care about.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	logger   *slog.Logger
}

// NewKafkaEventPublisher creates a publisher on an existing producer.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, logger: logger}
}

// Publish serialises and sends domain events, keyed by aggregate ID so one
// analysis stays in one partition.
func (p *KafkaEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"payload_size", len(payload),
		)

		msg := pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type": evt.EventType(),
				"event_id":   evt.EventID(),
			},
		}
		if err := p.producer.Publish(ctx, evt.EventType(), msg); err != nil {
			return fmt.Errorf("publish event to topic %s: %w", evt.EventType(), err)
		}
	}
	return nil
}
