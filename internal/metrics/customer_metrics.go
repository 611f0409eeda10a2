package metrics

import (
	"github.com/hanssonfredrik/customers/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation results recorded by CustomerMetrics.
const (
	ResultOK          = "ok"
	ResultNotFound    = "not_found"
	ResultConflict    = "conflict"
	ResultInvalid     = "invalid"
	ResultUnavailable = "unavailable"
	ResultError       = "error"
)

// CustomerMetrics records customer service operations.
type CustomerMetrics interface {
	ObserveOperation(operation, result string)
	IncEventPublishFailed(eventType string)
}

type customerMetrics struct {
	log          *logger.Logger
	operations   *prometheus.CounterVec
	publishFails *prometheus.CounterVec
}

// NewCustomerMetrics registers the customer operation metrics.
func NewCustomerMetrics(registry prometheus.Registerer, log *logger.Logger) CustomerMetrics {
	operations := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "customers_operations_total",
			Help: "The total number of customer operations by outcome",
		},
		[]string{"operation", "result"},
	)

	publishFails := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "customers_event_publish_failures_total",
			Help: "The total number of change events that could not be published",
		},
		[]string{"type"},
	)

	return &customerMetrics{
		log:          log,
		operations:   operations,
		publishFails: publishFails,
	}
}

// ObserveOperation counts one finished operation.
func (m *customerMetrics) ObserveOperation(operation, result string) {
	m.operations.WithLabelValues(operation, result).Inc()
}

// IncEventPublishFailed counts a change event that was dropped.
func (m *customerMetrics) IncEventPublishFailed(eventType string) {
	m.publishFails.WithLabelValues(eventType).Inc()
}

type nopCustomerMetrics struct{}

// NopCustomerMetrics returns a CustomerMetrics that records nothing.
func NopCustomerMetrics() CustomerMetrics { return nopCustomerMetrics{} }

func (nopCustomerMetrics) ObserveOperation(string, string) {}
func (nopCustomerMetrics) IncEventPublishFailed(string)    {}
