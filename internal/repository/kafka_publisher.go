package repository

import (
	"context"

	"Heliox/internal/domain/models"
	pkgkafka "Heliox/pkg/kafka"
)

// KafkaPublisher mirrors ledger events to a Kafka topic for dashboards and
// other downstream consumers. Messages are keyed by run id so per-run
// ordering survives partitioning.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a publisher for the given topic.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishEvent(ctx context.Context, e *models.Event) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.RunID), e)
}

// PublishMessage sends an arbitrary payload to an explicit topic. Used by
// the log collector for aggregated error batches.
func (p *KafkaPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
