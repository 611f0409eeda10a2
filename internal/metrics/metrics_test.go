package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/hanssonfredrik/customers/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCustomerMetrics(reg, logger.Discard())

	m.ObserveOperation("create", ResultOK)
	m.ObserveOperation("create", ResultOK)
	m.ObserveOperation("create", ResultConflict)
	m.IncEventPublishFailed("created")

	expected := `
# HELP customers_operations_total The total number of customer operations by outcome
# TYPE customers_operations_total counter
customers_operations_total{operation="create",result="conflict"} 1
customers_operations_total{operation="create",result="ok"} 2
# HELP customers_event_publish_failures_total The total number of change events that could not be published
# TYPE customers_event_publish_failures_total counter
customers_event_publish_failures_total{type="created"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"customers_operations_total", "customers_event_publish_failures_total"))
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("GET", "/customers/:id", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "/customers/:id", 404, time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSystemMetrics_WithoutPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSystemMetrics(reg, nil, logger.Discard())

	m.RecordGoroutines()
	m.RecordMemory()
	m.RecordPool()

	count, err := testutil.GatherAndCount(reg, "system_goroutines", "db_pool_total_conns")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	m.StartRecording(time.Millisecond)
	m.Stop()
	m.Stop()
}

func TestSystemMetrics_NonPositiveIntervalDoesNotStart(t *testing.T) {
	m := NewSystemMetrics(prometheus.NewRegistry(), nil, logger.Discard())

	assert.NotPanics(t, func() {
		m.StartRecording(0)
		m.StartRecording(-time.Second)
	})
	m.Stop()
}

func TestNopCustomerMetrics(t *testing.T) {
	m := NopCustomerMetrics()
	m.ObserveOperation("get", ResultError)
	m.IncEventPublishFailed("deleted")
}
