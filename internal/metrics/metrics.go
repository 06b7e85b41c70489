package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "automation"

// Degradation kinds.
const (
	DegradationDateFallback = "date_fallback"
	DegradationLookupMiss   = "lookup_miss"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Recorder collects run metrics in a private registry. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	sourceRows   *prometheus.CounterVec
	outputRows   *prometheus.CounterVec
	categoryRows *prometheus.CounterVec
	degradations *prometheus.CounterVec
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	sourceRows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rows_total",
			Help:      "Source rows read, by automation.",
		},
		[]string{"automation"},
	)
	outputRows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_rows_total",
			Help:      "Rows written, by output table.",
		},
		[]string{"table"},
	)
	categoryRows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_rows_total",
			Help:      "Cured list source rows, by category.",
		},
		[]string{"category"},
	)
	degradations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degradations_total",
			Help:      "Soft degradations during enrichment, by kind.",
		},
		[]string{"kind"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Automation runs, by automation and status.",
		},
		[]string{"automation", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Automation run duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"automation"},
	)

	registry.MustRegister(sourceRows, outputRows, categoryRows, degradations, runs, runDuration)

	return &Recorder{
		registry:     registry,
		sourceRows:   sourceRows,
		outputRows:   outputRows,
		categoryRows: categoryRows,
		degradations: degradations,
		runs:         runs,
		runDuration:  runDuration,
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) SourceRows(automation string, n int) {
	if r == nil {
		return
	}
	r.sourceRows.WithLabelValues(automation).Add(float64(n))
}

func (r *Recorder) OutputRows(table string, n int) {
	if r == nil {
		return
	}
	r.outputRows.WithLabelValues(table).Add(float64(n))
}

func (r *Recorder) CategoryRows(category string, n int) {
	if r == nil {
		return
	}
	r.categoryRows.WithLabelValues(category).Add(float64(n))
}

func (r *Recorder) Degradations(kind string, n int) {
	if r == nil {
		return
	}
	r.degradations.WithLabelValues(kind).Add(float64(n))
}

// FinishRun records the outcome and duration of one automation run.
func (r *Recorder) FinishRun(automation string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	r.runs.WithLabelValues(automation, status).Inc()
	r.runDuration.WithLabelValues(automation).Observe(elapsed.Seconds())
}

// WriteTextfile writes the registry in the Prometheus text format, for
// pickup by a node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
