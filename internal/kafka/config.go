package kafka

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/hanssonfredrik/customers/config"
	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/pkg/logger"
)

// Config is the Kafka configuration of the change-event publisher.
type Config struct {
	Brokers     []string
	ClientID    string
	TopicPrefix string
	EnsureTopic bool
	Producer    ProducerConfig
	Topics      TopicConfig
}

// ProducerConfig holds producer settings.
type ProducerConfig struct {
	MaxMessageBytes int
	Compression     sarama.CompressionCodec
	RequiredAcks    sarama.RequiredAcks
	RetryMax        int
	Timeout         time.Duration
}

// TopicConfig is used when topics have to be created.
type TopicConfig struct {
	NumPartitions     int32
	ReplicationFactor int16
}

// NewConfig builds the Kafka configuration from the application config.
func NewConfig(cfg config.KafkaConfig) *Config {
	return &Config{
		Brokers:     cfg.Brokers,
		ClientID:    cfg.ClientID,
		TopicPrefix: cfg.TopicPrefix,
		EnsureTopic: cfg.EnsureTopic,
		Producer: ProducerConfig{
			MaxMessageBytes: 1000000,
			Compression:     sarama.CompressionSnappy,
			RequiredAcks:    sarama.WaitForAll,
			RetryMax:        3,
			Timeout:         10 * time.Second,
		},
		Topics: TopicConfig{
			NumPartitions:     3,
			ReplicationFactor: 1,
		},
	}
}

// Enabled reports whether any broker is configured.
func (c *Config) Enabled() bool {
	return len(c.Brokers) > 0
}

// Topic returns the topic that carries events of type t, e.g. customers.created.
func (c *Config) Topic(t domain.EventType) string {
	return c.TopicPrefix + "." + string(t)
}

// AllTopics lists every topic the publisher writes to.
func (c *Config) AllTopics() []string {
	return []string{
		c.Topic(domain.EventCustomerCreated),
		c.Topic(domain.EventCustomerUpdated),
		c.Topic(domain.EventCustomerDeleted),
	}
}

// NewSaramaConfig builds the sarama client configuration.
func NewSaramaConfig(cfg *Config, log *logger.Logger) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Version = sarama.V3_3_0_0
	if cfg.ClientID != "" {
		saramaConfig.ClientID = cfg.ClientID
	}

	saramaConfig.Producer.MaxMessageBytes = cfg.Producer.MaxMessageBytes
	saramaConfig.Producer.Compression = cfg.Producer.Compression
	saramaConfig.Producer.RequiredAcks = cfg.Producer.RequiredAcks
	saramaConfig.Producer.Retry.Max = cfg.Producer.RetryMax
	saramaConfig.Producer.Timeout = cfg.Producer.Timeout
	// SyncProducer requires both
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true

	log.Debug("Kafka client %q configured for brokers %v", saramaConfig.ClientID, cfg.Brokers)
	return saramaConfig
}
