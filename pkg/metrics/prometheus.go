// Package metrics provides Prometheus metrics for the torus tracker service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the tracker service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion metrics
	eventsIngested  prometheus.Counter
	eventsInserted  prometheus.Counter
	eventsRepeated  prometheus.Counter
	ingestLatency   prometheus.Histogram
	averageStates   *prometheus.CounterVec
	averagesAbsent  prometheus.Counter
	averageDrift    *prometheus.GaugeVec
	windowEvictions prometheus.Counter

	// Shard state
	shardCount      prometheus.Gauge
	windowOccupancy *prometheus.GaugeVec
	storeEntries    *prometheus.GaugeVec

	// Queue metrics
	queueCapacity    *prometheus.GaugeVec
	queueSize        *prometheus.GaugeVec
	queueUtilization *prometheus.GaugeVec
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueRejected    *prometheus.CounterVec
	queueLatency     prometheus.Histogram

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerErrors            prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Errors by component
	errorsByComponent *prometheus.CounterVec

	// Process and host metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
	hostCPUPercent       prometheus.Gauge
	hostMemoryPercent    prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "torus",
		subsystem:        "tracker",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval is how often periodic gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether the metrics are registered for scraping.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts(m.counterOpts(name, help))
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics. A disabled manager
// still creates them so callers never see nil collectors, but registers
// nothing.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	reg := m.registry
	if !m.enabled {
		reg = nil
	}
	auto := promauto.With(reg)

	m.eventsIngested = auto.NewCounter(m.counterOpts("events_ingested_total",
		"Total number of events applied to a shard"))
	m.eventsInserted = auto.NewCounter(m.counterOpts("events_inserted_total",
		"Events whose identifier was new and got a follow point"))
	m.eventsRepeated = auto.NewCounter(m.counterOpts("events_repeated_total",
		"Events whose identifier was already stored"))
	m.ingestLatency = auto.NewHistogram(m.histogramOpts("ingest_latency_milliseconds",
		"Time spent applying one event in milliseconds", m.histogramBuckets))
	m.averageStates = auto.NewCounterVec(m.counterOpts("average_state_total",
		"Rolling average updates by phase"), []string{"state"})
	m.averagesAbsent = auto.NewCounter(m.counterOpts("average_absent_total",
		"Updates that produced no average"))
	m.averageDrift = auto.NewGaugeVec(m.gaugeOpts("average_drift",
		"Absolute difference between the rolling and the exact mean"), []string{"shard", "axis"})
	m.windowEvictions = auto.NewCounter(m.counterOpts("window_evictions_total",
		"Identifiers pushed out of a full window"))

	m.shardCount = auto.NewGauge(m.gaugeOpts("shard_count", "Number of tracker shards"))
	m.windowOccupancy = auto.NewGaugeVec(m.gaugeOpts("window_occupancy",
		"Identifiers currently held in the window"), []string{"shard"})
	m.storeEntries = auto.NewGaugeVec(m.gaugeOpts("store_entries",
		"Identifiers currently held in the event store"), []string{"shard"})

	m.queueCapacity = auto.NewGaugeVec(m.gaugeOpts("queue_capacity",
		"Capacity of a shard queue"), []string{"queue"})
	m.queueSize = auto.NewGaugeVec(m.gaugeOpts("queue_size",
		"Events waiting in a shard queue"), []string{"queue"})
	m.queueUtilization = auto.NewGaugeVec(m.gaugeOpts("queue_utilization_ratio",
		"Queue size divided by capacity"), []string{"queue"})
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Events accepted by a queue"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Events handed to a worker"))
	m.queueRejected = auto.NewCounterVec(m.counterOpts("queue_rejected_total",
		"Events refused by a queue"), []string{"reason"})
	m.queueLatency = auto.NewHistogram(m.histogramOpts("queue_enqueue_latency_milliseconds",
		"Enqueue latency in milliseconds", m.histogramBuckets))

	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Running shard workers"))
	m.workerMessagesPerSecond = auto.NewGauge(m.gaugeOpts("worker_messages_per_second",
		"Events processed per second across all workers"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Events a worker failed to apply"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("http_errors_total",
		"HTTP errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total",
		"Errors by component and type"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap in use by the process"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
	m.hostCPUPercent = auto.NewGauge(m.gaugeOpts("host_cpu_percent", "Host CPU utilisation in percent"))
	m.hostMemoryPercent = auto.NewGauge(m.gaugeOpts("host_memory_used_percent", "Host memory in use in percent"))
}

// Global returns the manager behind the package-level functions.
func Global() *Manager { return globalManager }

// Ingestion metrics functions.

// RecordIngest records one applied event.
func RecordIngest(inserted bool, state string, absent bool, latencyMs float64) {
	m := globalManager
	m.eventsIngested.Inc()
	if inserted {
		m.eventsInserted.Inc()
	} else {
		m.eventsRepeated.Inc()
	}
	m.averageStates.WithLabelValues(state).Inc()
	if absent {
		m.averagesAbsent.Inc()
	}
	m.ingestLatency.Observe(latencyMs)
}

// RecordWindowEviction counts an identifier leaving a full window.
func RecordWindowEviction() {
	globalManager.windowEvictions.Inc()
}

// UpdateAverageDrift sets the drift of one shard on one axis.
func UpdateAverageDrift(shardID, axis string, drift float64) {
	globalManager.averageDrift.WithLabelValues(shardID, axis).Set(drift)
}

// Shard metrics functions.

// UpdateShardCount sets the number of shards.
func UpdateShardCount(count int) {
	globalManager.shardCount.Set(float64(count))
}

// UpdateShardState sets window occupancy and store size for one shard.
func UpdateShardState(shardID string, windowLen, storeLen int) {
	globalManager.windowOccupancy.WithLabelValues(shardID).Set(float64(windowLen))
	globalManager.storeEntries.WithLabelValues(shardID).Set(float64(storeLen))
}

// Queue metrics functions.

// UpdateQueueCapacity sets the capacity of the named queue.
func UpdateQueueCapacity(queue string, capacity int) {
	globalManager.queueCapacity.WithLabelValues(queue).Set(float64(capacity))
}

// UpdateQueueSize sets size and utilization of the named queue.
func UpdateQueueSize(queue string, size, capacity int) {
	globalManager.queueSize.WithLabelValues(queue).Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.WithLabelValues(queue).Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue counts an accepted event.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts an event handed to a worker.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueRejected counts a refused event.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
	globalManager.errorsByComponent.WithLabelValues("queue", reason).Inc()
}

// RecordQueueLatency records enqueue latency in milliseconds.
func RecordQueueLatency(latencyMs float64) {
	globalManager.queueLatency.Observe(latencyMs)
}

// Worker metrics functions.

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerMessagesPerSecond sets the processing rate.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordWorkerError counts an event a worker failed to apply.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
	globalManager.errorsByComponent.WithLabelValues("worker", "ingest_error").Inc()
}

// HTTP metrics functions.

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System metrics functions.

// UpdateSystemMemoryUsage sets the process memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// UpdateHostUsage sets host CPU and memory utilisation in percent.
func UpdateHostUsage(cpuPercent, memoryPercent float64) {
	globalManager.hostCPUPercent.Set(cpuPercent)
	globalManager.hostMemoryPercent.Set(memoryPercent)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Configure rebuilds the global manager on a fresh registry with opts.
// Call it once at startup, before any handler captures GetRegistry.
func Configure(opts ...Option) *Manager {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
	return globalManager
}
