package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/internal/kafka"
	"github.com/hanssonfredrik/customers/pkg/logger"
)

// HeaderEventType names the message header that carries the event type.
const HeaderEventType = "event_type"

// CustomerProducer publishes customer change events to Kafka.
type CustomerProducer struct {
	producer sarama.SyncProducer
	cfg      *kafka.Config
	log      *logger.Logger
}

// NewCustomerProducer creates a publisher over a sync producer.
func NewCustomerProducer(producer sarama.SyncProducer, cfg *kafka.Config, log *logger.Logger) *CustomerProducer {
	return &CustomerProducer{
		producer: producer,
		cfg:      cfg,
		log:      log,
	}
}

// Publish sends the event to its topic, keyed by customer id so events of one
// customer stay ordered.
func (p *CustomerProducer) Publish(ctx context.Context, event domain.CustomerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message, err := NewMessage(p.cfg, event)
	if err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish customer event: %w", err)
	}

	p.log.Debug("Published %s event for customer %d to %s: partition=%d offset=%d",
		event.Type, event.CustomerID, message.Topic, partition, offset)
	return nil
}

// Close closes the underlying producer.
func (p *CustomerProducer) Close() error {
	return p.producer.Close()
}

// NewMessage encodes event as a producer message.
func NewMessage(cfg *kafka.Config, event domain.CustomerEvent) (*sarama.ProducerMessage, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customer event: %w", err)
	}

	return &sarama.ProducerMessage{
		Topic: cfg.Topic(event.Type),
		Key:   sarama.StringEncoder(strconv.FormatInt(event.CustomerID, 10)),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte(HeaderEventType),
				Value: []byte(event.Type),
			},
		},
		Timestamp: event.OccurredAt,
	}, nil
}
