package kafka

import (
	"errors"
	"fmt"
	"sort"

	"github.com/IBM/sarama"
	"github.com/hanssonfredrik/customers/pkg/logger"
)

// TopicAdmin is the part of sarama.ClusterAdmin used to ensure topics.
type TopicAdmin interface {
	ListTopics() (map[string]sarama.TopicDetail, error)
	CreateTopic(topic string, detail *sarama.TopicDetail, validateOnly bool) error
}

// NewSyncProducer connects a sarama sync producer to the configured brokers.
func NewSyncProducer(cfg *Config, log *logger.Logger) (sarama.SyncProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

// NewClusterAdmin connects a sarama cluster admin to the configured brokers.
func NewClusterAdmin(cfg *Config, log *logger.Logger) (sarama.ClusterAdmin, error) {
	admin, err := sarama.NewClusterAdmin(cfg.Brokers, NewSaramaConfig(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka cluster admin: %w", err)
	}
	return admin, nil
}

// EnsureTopics creates the missing topics. A topic created concurrently by
// someone else is not an error.
func EnsureTopics(admin TopicAdmin, cfg *Config, log *logger.Logger) error {
	required := cfg.AllTopics()
	log.Info("Ensuring Kafka topics exist: %v", required)

	existing, err := admin.ListTopics()
	if err != nil {
		return fmt.Errorf("kafka list topics failed: %w", err)
	}

	var missing []string
	for _, topic := range required {
		if _, ok := existing[topic]; ok {
			log.Debug("Topic %s already exists", topic)
			continue
		}
		missing = append(missing, topic)
	}
	sort.Strings(missing)

	for _, topic := range missing {
		detail := &sarama.TopicDetail{
			NumPartitions:     cfg.Topics.NumPartitions,
			ReplicationFactor: cfg.Topics.ReplicationFactor,
		}
		if err := admin.CreateTopic(topic, detail, false); err != nil {
			if isTopicExists(err) {
				log.Warn("Topic %s was created concurrently", topic)
				continue
			}
			return fmt.Errorf("kafka create topic %s failed: %w", topic, err)
		}
		log.Info("Created topic %s", topic)
	}

	return nil
}

func isTopicExists(err error) bool {
	if errors.Is(err, sarama.ErrTopicAlreadyExists) {
		return true
	}
	var topicErr *sarama.TopicError
	return errors.As(err, &topicErr) && topicErr.Err == sarama.ErrTopicAlreadyExists
}
