package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ImportMetrics records pipeline-level telemetry for roster imports.
type ImportMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, d time.Duration)
	RecordRowsProcessed(ctx context.Context, eventID string, n int)
	RecordScoresWritten(ctx context.Context, eventID string, n int)
	RecordDuplicatesSkipped(ctx context.Context, eventID string, n int)
}

type prometheusImportMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	rows      *prometheus.CounterVec
	scores    *prometheus.CounterVec
	skipped   *prometheus.CounterVec
}

// NewImportMetrics registers import metrics on the given registerer.
func NewImportMetrics(reg prometheus.Registerer) ImportMetrics {
	factory := promauto.With(reg)
	return &prometheusImportMetrics{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_import_operation_attempts_total",
			Help: "Number of import operation attempts.",
		}, []string{"operation"}),
		successes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_import_operation_success_total",
			Help: "Number of import operations that succeeded.",
		}, []string{"operation"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_import_operation_failure_total",
			Help: "Number of import operations that failed.",
		}, []string{"operation"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roster_import_operation_duration_seconds",
			Help:    "Duration of import operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_import_rows_processed_total",
			Help: "Number of spreadsheet rows processed.",
		}, []string{"event_id"}),
		scores: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_import_scores_written_total",
			Help: "Number of drill score values written.",
		}, []string{"event_id"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_import_duplicates_skipped_total",
			Help: "Number of rows skipped as duplicates.",
		}, []string{"event_id"}),
	}
}

func (m *prometheusImportMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.attempts.WithLabelValues(operation).Inc()
}

func (m *prometheusImportMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.successes.WithLabelValues(operation).Inc()
}

func (m *prometheusImportMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.failures.WithLabelValues(operation).Inc()
}

func (m *prometheusImportMetrics) RecordOperationDuration(_ context.Context, operation string, d time.Duration) {
	m.durations.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *prometheusImportMetrics) RecordRowsProcessed(_ context.Context, eventID string, n int) {
	m.rows.WithLabelValues(eventID).Add(float64(n))
}

func (m *prometheusImportMetrics) RecordScoresWritten(_ context.Context, eventID string, n int) {
	m.scores.WithLabelValues(eventID).Add(float64(n))
}

func (m *prometheusImportMetrics) RecordDuplicatesSkipped(_ context.Context, eventID string, n int) {
	m.skipped.WithLabelValues(eventID).Add(float64(n))
}

// NoOpMetrics satisfies ImportMetrics without recording anything. Used in tests.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string)                {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string)                {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string)                {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoOpMetrics) RecordRowsProcessed(context.Context, string, int)              {}
func (NoOpMetrics) RecordScoresWritten(context.Context, string, int)              {}
func (NoOpMetrics) RecordDuplicatesSkipped(context.Context, string, int)          {}

// MetricsServer serves the prometheus scrape endpoint. A nil return means
// metrics are disabled (empty address).
func MetricsServer(address string, gatherer prometheus.Gatherer) *http.Server {
	if address == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{Addr: address, Handler: mux}
}
