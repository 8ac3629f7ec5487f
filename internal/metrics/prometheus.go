package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics contains all Prometheus metrics for the launchpad
type PrometheusMetrics struct {
	// Event ingestion and pipeline metrics
	EventsIngestedTotal     *prometheus.CounterVec
	EventsProcessedTotal    *prometheus.CounterVec
	EventProcessingDuration *prometheus.HistogramVec
	PipelineQueueDepth      prometheus.Gauge

	// LLM metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec
	LLMTokensTotal     *prometheus.CounterVec

	// Storage metrics
	DatabaseOperationsTotal   *prometheus.CounterVec
	DatabaseOperationDuration *prometheus.HistogramVec

	// Discord metrics
	MessagesSentTotal    *prometheus.CounterVec
	MessageFailuresTotal *prometheus.CounterVec

	// Wellness content metrics
	WellnessPostsTotal *prometheus.CounterVec

	// Knowledge base metrics
	KnowledgeBaseDocuments prometheus.Gauge

	// API metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Application health metrics
	ApplicationUptime prometheus.Gauge
	ComponentHealth   *prometheus.GaugeVec
	MemoryUsage       prometheus.Gauge
	GoroutineCount    prometheus.Gauge
}

// NewPrometheusMetrics creates and registers all Prometheus metrics
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		EventsIngestedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchpad_events_ingested_total",
				Help: "Total number of events accepted for processing",
			},
			[]string{"source"},
		),

		EventsProcessedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchpad_events_processed_total",
				Help: "Total number of events run through the pipeline",
			},
			[]string{"intent", "status"},
		),

		EventProcessingDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchpad_event_processing_duration_seconds",
				Help:    "Time spent in individual pipeline nodes",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"node"},
		),

		PipelineQueueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "launchpad_pipeline_queue_depth",
				Help: "Number of events waiting in the pipeline queue",
			},
		),

		LLMRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchpad_llm_requests_total",
				Help: "Total number of LLM API requests",
			},
			[]string{"operation", "status"},
		),

		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchpad_llm_request_duration_seconds",
				Help:    "Duration of LLM API requests",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),

		LLMTokensTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchpad_llm_tokens_total",
				Help: "Total number of tokens consumed by LLM requests",
			},
			[]string{"type"},
		),

		DatabaseOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchpad_database_operations_total",
				Help: "Total number of database operations",
			},
			[]string{"operation", "table", "status"},
		),

		DatabaseOperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchpad_database_operation_duration_seconds",
				Help:    "Duration of database operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),

		MessagesSentTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchpad_messages_sent_total",
				Help: "Total number of Discord messages sent",
			},
			[]string{"kind"},
		),

		MessageFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchpad_message_failures_total",
				Help: "Total number of failed Discord message sends",
			},
			[]string{"kind"},
		),

		WellnessPostsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchpad_wellness_posts_total",
				Help: "Total number of scheduled wellness posts",
			},
			[]string{"content_type", "status"},
		),

		KnowledgeBaseDocuments: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "launchpad_knowledge_base_documents",
				Help: "Number of documents in the knowledge base",
			},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchpad_http_requests_total",
				Help: "Total number of HTTP requests received",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchpad_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ApplicationUptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "launchpad_application_uptime_seconds",
				Help: "Application uptime in seconds",
			},
		),

		ComponentHealth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "launchpad_component_health",
				Help: "Health status of application components (1=healthy, 0=unhealthy)",
			},
			[]string{"component"},
		),

		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "launchpad_memory_usage_bytes",
				Help: "Current memory usage in bytes",
			},
		),

		GoroutineCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "launchpad_goroutines",
				Help: "Number of running goroutines",
			},
		),
	}
}

// RecordEventIngested records an accepted event
func (m *PrometheusMetrics) RecordEventIngested(source string) {
	m.EventsIngestedTotal.WithLabelValues(source).Inc()
}

// RecordEventProcessed records a completed pipeline run
func (m *PrometheusMetrics) RecordEventProcessed(intent, status string) {
	m.EventsProcessedTotal.WithLabelValues(intent, status).Inc()
}

// RecordNodeDuration records the time spent in a pipeline node
func (m *PrometheusMetrics) RecordNodeDuration(node string, duration time.Duration) {
	m.EventProcessingDuration.WithLabelValues(node).Observe(duration.Seconds())
}

// UpdateQueueDepth updates the pipeline queue depth metric
func (m *PrometheusMetrics) UpdateQueueDepth(depth int) {
	m.PipelineQueueDepth.Set(float64(depth))
}

// RecordLLMRequest records an LLM API request
func (m *PrometheusMetrics) RecordLLMRequest(operation, status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(operation, status).Inc()
	m.LLMRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordLLMTokens records token consumption
func (m *PrometheusMetrics) RecordLLMTokens(promptTokens, completionTokens int) {
	m.LLMTokensTotal.WithLabelValues("prompt").Add(float64(promptTokens))
	m.LLMTokensTotal.WithLabelValues("completion").Add(float64(completionTokens))
}

// RecordDatabaseOperation records a database operation
func (m *PrometheusMetrics) RecordDatabaseOperation(operation, table, status string, duration time.Duration) {
	m.DatabaseOperationsTotal.WithLabelValues(operation, table, status).Inc()
	m.DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordMessageSent records a sent Discord message
func (m *PrometheusMetrics) RecordMessageSent(kind string) {
	m.MessagesSentTotal.WithLabelValues(kind).Inc()
}

// RecordMessageFailure records a failed Discord message send
func (m *PrometheusMetrics) RecordMessageFailure(kind string) {
	m.MessageFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordWellnessPost records a scheduled wellness post attempt
func (m *PrometheusMetrics) RecordWellnessPost(contentType, status string) {
	m.WellnessPostsTotal.WithLabelValues(contentType, status).Inc()
}

// UpdateKnowledgeBaseDocuments updates the knowledge base size metric
func (m *PrometheusMetrics) UpdateKnowledgeBaseDocuments(count int) {
	m.KnowledgeBaseDocuments.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request
func (m *PrometheusMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// UpdateApplicationUptime updates the application uptime metric
func (m *PrometheusMetrics) UpdateApplicationUptime(startTime time.Time) {
	m.ApplicationUptime.Set(time.Since(startTime).Seconds())
}

// UpdateComponentHealth updates the health status of a component
func (m *PrometheusMetrics) UpdateComponentHealth(component string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.ComponentHealth.WithLabelValues(component).Set(value)
}

// UpdateMemoryUsage updates the memory usage metric
func (m *PrometheusMetrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}

// UpdateGoroutineCount updates the goroutine count metric
func (m *PrometheusMetrics) UpdateGoroutineCount(count int) {
	m.GoroutineCount.Set(float64(count))
}
