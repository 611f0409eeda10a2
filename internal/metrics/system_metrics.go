package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/hanssonfredrik/customers/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PoolStatter exposes connection pool statistics. *pgxpool.Pool satisfies it.
type PoolStatter interface {
	Stat() *pgxpool.Stat
}

// SystemMetrics samples runtime and connection pool gauges.
type SystemMetrics interface {
	RecordGoroutines()
	RecordMemory()
	RecordPool()
	StartRecording(interval time.Duration)
	Stop()
}

type systemMetrics struct {
	log          *logger.Logger
	pool         PoolStatter
	goroutines   prometheus.Gauge
	memoryAlloc  prometheus.Gauge
	memoryTotal  prometheus.Gauge
	memorySystem prometheus.Gauge
	memoryGC     prometheus.Gauge
	poolTotal    prometheus.Gauge
	poolIdle     prometheus.Gauge
	poolInUse    prometheus.Gauge
	poolMax      prometheus.Gauge
	poolWaits    prometheus.Gauge
	stopCh       chan struct{}
	stopOnce     sync.Once
}

// NewSystemMetrics registers the system gauges. pool may be nil when the
// store has no connection pool.
func NewSystemMetrics(registry prometheus.Registerer, pool PoolStatter, log *logger.Logger) SystemMetrics {
	gauge := func(name, help string) prometheus.Gauge {
		return promauto.With(registry).NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	}

	m := &systemMetrics{
		log:          log,
		pool:         pool,
		goroutines:   gauge("system_goroutines", "Current number of goroutines"),
		memoryAlloc:  gauge("system_memory_alloc_bytes", "Currently allocated memory in bytes"),
		memoryTotal:  gauge("system_memory_total_alloc_bytes", "Total memory allocation in bytes"),
		memorySystem: gauge("system_memory_system_bytes", "Total memory obtained from system in bytes"),
		memoryGC:     gauge("system_memory_gc_cycles", "Number of completed garbage collection cycles"),
		stopCh:       make(chan struct{}),
	}

	if pool != nil {
		m.poolTotal = gauge("db_pool_total_conns", "Total connections in the pool")
		m.poolIdle = gauge("db_pool_idle_conns", "Idle connections in the pool")
		m.poolInUse = gauge("db_pool_acquired_conns", "Connections currently acquired from the pool")
		m.poolMax = gauge("db_pool_max_conns", "Maximum size of the pool")
		m.poolWaits = gauge("db_pool_empty_acquire_count", "Acquires that had to wait for a connection")
	}

	return m
}

// RecordGoroutines sets the goroutine gauge.
func (m *systemMetrics) RecordGoroutines() {
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// RecordMemory sets the memory gauges.
func (m *systemMetrics) RecordMemory() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.memoryAlloc.Set(float64(memStats.Alloc))
	m.memoryTotal.Set(float64(memStats.TotalAlloc))
	m.memorySystem.Set(float64(memStats.Sys))
	m.memoryGC.Set(float64(memStats.NumGC))
}

// RecordPool sets the connection pool gauges. No-op without a pool.
func (m *systemMetrics) RecordPool() {
	if m.pool == nil {
		return
	}
	stat := m.pool.Stat()
	m.poolTotal.Set(float64(stat.TotalConns()))
	m.poolIdle.Set(float64(stat.IdleConns()))
	m.poolInUse.Set(float64(stat.AcquiredConns()))
	m.poolMax.Set(float64(stat.MaxConns()))
	m.poolWaits.Set(float64(stat.EmptyAcquireCount()))
}

// StartRecording samples every gauge on the given interval until Stop.
func (m *systemMetrics) StartRecording(interval time.Duration) {
	if interval <= 0 {
		m.log.Warn("System metrics recording disabled: interval %s is not positive", interval)
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.RecordGoroutines()
				m.RecordMemory()
				m.RecordPool()
			case <-m.stopCh:
				return
			}
		}
	}()
	m.log.Info("System metrics recording started with interval %s", interval)
}

// Stop ends recording. Safe to call more than once.
func (m *systemMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.log.Info("System metrics recording stopped")
	})
}
