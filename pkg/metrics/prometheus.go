package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	rowsFetched  *prometheus.CounterVec
	resamples    *prometheus.CounterVec
	testsRun     *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	testLatency   *prometheus.HistogramVec
	testResamples prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		rowsFetched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantkit_rows_fetched_total",
				Help: "Total rows loaded from data sources",
			},
			[]string{"source", "symbol"},
		),
		resamples: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantkit_resamples_total",
				Help: "Total resample operations by source and target resolution",
			},
			[]string{"from", "to"},
		),
		testsRun: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantkit_permutation_tests_total",
				Help: "Total permutation test runs",
			},
			[]string{"mode"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantkit_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantkit_fetch_duration_seconds",
				Help:    "Duration of data source fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		testLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantkit_test_duration_seconds",
				Help:    "Duration of permutation test runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		testResamples: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quantkit_test_resamples",
				Help:    "Null distribution sizes requested per test run",
				Buckets: prometheus.ExponentialBuckets(10, 10, 5),
			},
		),
	}
}

// RecordFetch records one data source fetch.
func (r *Recorder) RecordFetch(source, symbol string, rows int, seconds float64) {
	r.rowsFetched.WithLabelValues(source, symbol).Add(float64(rows))
	r.fetchLatency.WithLabelValues(source).Observe(seconds)
}

// RecordResample records one resample operation.
func (r *Recorder) RecordResample(from, to string) {
	r.resamples.WithLabelValues(from, to).Inc()
}

// RecordTest records one permutation test run.
func (r *Recorder) RecordTest(mode string, resamples int, seconds float64) {
	r.testsRun.WithLabelValues(mode).Inc()
	r.testLatency.WithLabelValues(mode).Observe(seconds)
	r.testResamples.Observe(float64(resamples))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
