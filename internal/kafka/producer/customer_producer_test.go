package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanssonfredrik/customers/config"
	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/internal/kafka"
	"github.com/hanssonfredrik/customers/pkg/logger"
)

func testConfig() *kafka.Config {
	return kafka.NewConfig(config.KafkaConfig{Brokers: []string{"localhost:9092"}, TopicPrefix: "customers"})
}

func testEvent() domain.CustomerEvent {
	return domain.CustomerEvent{
		EventID:    "c8f3a1e2-0000-4000-8000-000000000001",
		Type:       domain.EventCustomerCreated,
		CustomerID: 42,
		Customer:   &domain.Customer{ID: 42, Name: "Alice", Email: "alice@example.com", Phone: "+46701234567"},
		OccurredAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(testConfig(), testEvent())
	require.NoError(t, err)

	assert.Equal(t, "customers.created", msg.Topic)
	key, err := msg.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "42", string(key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, HeaderEventType, string(msg.Headers[0].Key))
	assert.Equal(t, "created", string(msg.Headers[0].Value))

	value, err := msg.Value.Encode()
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(value, &body))
	assert.Equal(t, "created", body["type"])
	assert.Equal(t, float64(42), body["customerId"])
	assert.Contains(t, body, "customer")
}

func TestNewMessage_DeleteHasNoCustomer(t *testing.T) {
	event := testEvent()
	event.Type = domain.EventCustomerDeleted
	event.Customer = nil

	msg, err := NewMessage(testConfig(), event)
	require.NoError(t, err)
	assert.Equal(t, "customers.deleted", msg.Topic)

	value, err := msg.Value.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(value), `"customer":`)
}

func TestCustomerProducer_Publish(t *testing.T) {
	t.Run("sends", func(t *testing.T) {
		sp := mocks.NewSyncProducer(t, nil)
		sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var e domain.CustomerEvent
			if err := json.Unmarshal(val, &e); err != nil {
				return err
			}
			if e.CustomerID != 42 {
				return errors.New("wrong customer id")
			}
			return nil
		})

		p := NewCustomerProducer(sp, testConfig(), logger.Discard())
		require.NoError(t, p.Publish(context.Background(), testEvent()))
		require.NoError(t, p.Close())
	})

	t.Run("broker failure is returned", func(t *testing.T) {
		sp := mocks.NewSyncProducer(t, nil)
		sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		p := NewCustomerProducer(sp, testConfig(), logger.Discard())
		err := p.Publish(context.Background(), testEvent())
		assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
		require.NoError(t, p.Close())
	})

	t.Run("canceled context sends nothing", func(t *testing.T) {
		sp := mocks.NewSyncProducer(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := NewCustomerProducer(sp, testConfig(), logger.Discard())
		assert.ErrorIs(t, p.Publish(ctx, testEvent()), context.Canceled)
		require.NoError(t, p.Close())
	})
}
