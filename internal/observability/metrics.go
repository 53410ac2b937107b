package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "amwg_table"

// Metrics holds the Prometheus counters, histograms, and gauges for a table run.
type Metrics struct {
	RowsEmitted           *prometheus.CounterVec // labels: case
	VariablesSkipped      *prometheus.CounterVec // labels: reason={no_files,vertical_dimension,no_time_axis}
	ApproximateReductions *prometheus.CounterVec // labels: weighting
	FatalErrors           prometheus.Counter
	RunInProgress         prometheus.Gauge

	VariableDuration prometheus.Histogram
	AnnualSampleSize prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_emitted_total",
			Help:      "Statistics rows appended to case tables.",
		}, []string{"case"}),
		VariablesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "variables_skipped_total",
			Help:      "Variables skipped without a row, by reason.",
		}, []string{"reason"}),
		ApproximateReductions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approximate_reductions_total",
			Help:      "Spatial means computed without true cell areas, by weighting.",
		}, []string{"weighting"}),
		FatalErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fatal_errors_total",
			Help:      "Errors that aborted a run.",
		}),
		RunInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_in_progress",
			Help:      "1 while a table run is active, 0 otherwise.",
		}),
		VariableDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "variable_duration_seconds",
			Help:      "Time to load, reduce, and tabulate one variable.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		AnnualSampleSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "annual_sample_size",
			Help:      "Number of annual means behind each emitted row.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 50, 100, 200},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsEmitted,
		m.VariablesSkipped,
		m.ApproximateReductions,
		m.FatalErrors,
		m.RunInProgress,
		m.VariableDuration,
		m.AnnualSampleSize,
	}
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m, reg
}

// WriteTextfile dumps the gathered metrics in the node_exporter textfile
// format. Batch runs use this instead of serving /metrics.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
