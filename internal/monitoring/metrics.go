// Package monitoring holds the Prometheus metrics for the scan engine.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ScansTotal      prometheus.Counter
	ScanErrorsTotal *prometheus.CounterVec
	FilesFoundTotal *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		ScansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roboscan_scans_total",
			Help: "The total number of scans started",
		}),
		ScanErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roboscan_scan_errors_total",
			Help: "The total number of fatal scan failures by classified kind",
		}, []string{"kind"}), // e.g. 'dns', 'tls', 'timeout'
		FilesFoundTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roboscan_files_found_total",
			Help: "How often each tracked technical file was found",
		}, []string{"file"}),
		FetchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "roboscan_fetch_duration_seconds",
			Help:    "Wall time of the full technical-file fan-out",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncScansTotal() {
	if m != nil {
		m.ScansTotal.Inc()
	}
}

func (m *Metrics) IncScanErrorsTotal(kind string) {
	if m != nil {
		m.ScanErrorsTotal.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncFilesFoundTotal(file string) {
	if m != nil {
		m.FilesFoundTotal.WithLabelValues(file).Inc()
	}
}

func (m *Metrics) ObserveFetchDuration(seconds float64) {
	if m != nil {
		m.FetchDuration.Observe(seconds)
	}
}
