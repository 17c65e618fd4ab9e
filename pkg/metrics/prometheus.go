// Package metrics provides Prometheus metrics for the flyrank harvester.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default histogram buckets for operation durations in milliseconds.
var defaultBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000} //nolint:gochecknoglobals

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  prometheus.Registerer

	// Pipeline metrics.
	runsTotal           *prometheus.CounterVec
	runDuration         *prometheus.HistogramVec
	lastRunUnix         *prometheus.GaugeVec
	coursesFetched      prometheus.Counter
	courseFetchErrors   prometheus.Counter
	standingsRows       prometheus.Counter
	usernameLookups     prometheus.Counter
	usernameLookupFails prometheus.Counter

	// Sink metrics.
	sinkWriteDuration *prometheus.HistogramVec
	sinkRows          *prometheus.CounterVec
	sinkErrors        *prometheus.CounterVec

	// Scheduler metrics.
	jobsEnqueued prometheus.Counter
	jobsSkipped  prometheus.Counter
	queueDepth   prometheus.Gauge

	// HTTP metrics.
	httpRequests       *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "flyrank",
		subsystem: "harvester",
		buckets:   defaultBuckets,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total pipeline runs by job and outcome",
	}, []string{"job", "outcome"})

	m.runDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Pipeline run duration in milliseconds",
		Buckets:   m.buckets,
	}, []string{"job"})

	m.lastRunUnix = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_unix",
		Help:      "Unix timestamp of the last completed run by job",
	}, []string{"job"})

	m.coursesFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "courses_fetched_total",
		Help:      "Total course leaderboards fetched successfully",
	})

	m.courseFetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "course_fetch_errors_total",
		Help:      "Total course fetches that failed and were skipped",
	})

	m.standingsRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "standings_rows_total",
		Help:      "Total standing rows produced by the scoring engine",
	})

	m.usernameLookups = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "username_lookups_total",
		Help:      "Total username resolution calls",
	})

	m.usernameLookupFails = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "username_lookup_failures_total",
		Help:      "Total username resolutions that failed",
	})

	m.sinkWriteDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_write_duration_milliseconds",
		Help:      "Sink write duration in milliseconds by table",
		Buckets:   m.buckets,
	}, []string{"table"})

	m.sinkRows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_rows_written_total",
		Help:      "Total rows written by table",
	}, []string{"table"})

	m.sinkErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_errors_total",
		Help:      "Total sink write failures by table",
	}, []string{"table"})

	m.jobsEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scheduler_jobs_enqueued_total",
		Help:      "Total job tokens enqueued by the scheduler",
	})

	m.jobsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scheduler_jobs_skipped_total",
		Help:      "Total due jobs skipped because the prior invocation was still in flight",
	})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scheduler_queue_depth",
		Help:      "Current number of pending job tokens",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.buckets,
	}, []string{"endpoint", "method", "status"})
}

// Package-level helpers operating on the global manager.

func RecordRun(job, outcome string) {
	globalManager.runsTotal.WithLabelValues(job, outcome).Inc()
}

func RecordRunDuration(job string, durationMs float64) {
	globalManager.runDuration.WithLabelValues(job).Observe(durationMs)
}

func UpdateLastRunUnix(job string, unix int64) {
	globalManager.lastRunUnix.WithLabelValues(job).Set(float64(unix))
}

func RecordCourseFetched() {
	globalManager.coursesFetched.Inc()
}

func RecordCourseFetchError() {
	globalManager.courseFetchErrors.Inc()
}

func RecordStandingsRows(n int) {
	globalManager.standingsRows.Add(float64(n))
}

func RecordUsernameLookup() {
	globalManager.usernameLookups.Inc()
}

func RecordUsernameLookupFailure() {
	globalManager.usernameLookupFails.Inc()
}

func RecordSinkWrite(table string, rows int, durationMs float64) {
	globalManager.sinkRows.WithLabelValues(table).Add(float64(rows))
	globalManager.sinkWriteDuration.WithLabelValues(table).Observe(durationMs)
}

func RecordSinkError(table string) {
	globalManager.sinkErrors.WithLabelValues(table).Inc()
}

func RecordJobEnqueued() {
	globalManager.jobsEnqueued.Inc()
}

func RecordJobSkipped() {
	globalManager.jobsSkipped.Inc()
}

func UpdateQueueDepth(depth int) {
	globalManager.queueDepth.Set(float64(depth))
}

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestLatency.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// GetRegistry returns the registry all service metrics are registered with.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
