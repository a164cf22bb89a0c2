// Package monitoring exposes Prometheus metrics for document fetches,
// selector queries, and file downloads.
//
// Metrics are registered on a caller-supplied prometheus.Registerer rather
// than the global registry, so several resolvers can coexist in one process.
// A nil *Metrics is valid and records nothing.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeSuccess         = "success"
	OutcomeInvalidSelector = "invalid_selector"
	OutcomeNotFound        = "not_found"
	OutcomeTransport       = "transport_error"
)

// SchemeInvalid is the scheme label for fetches with an unsupported scheme
const SchemeInvalid = "invalid"

// Metrics holds all Prometheus metrics
type Metrics struct {
	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FetchBytes    prometheus.Histogram

	QueryTotal *prometheus.CounterVec

	DownloadTotal *prometheus.CounterVec
	DownloadBytes prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	sizeBuckets := []float64{100, 1000, 10000, 100000, 1000000, 10000000}

	return &Metrics{
		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scr_fetch_total",
				Help: "Total number of document fetches",
			},
			[]string{"scheme", "outcome"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scr_fetch_duration_seconds",
				Help:    "Document fetch duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"scheme"},
		),
		FetchBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scr_fetch_bytes",
				Help:    "Fetched document size in bytes",
				Buckets: sizeBuckets,
			},
		),
		QueryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scr_query_total",
				Help: "Total number of selector queries",
			},
			[]string{"kind", "outcome"},
		),
		DownloadTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scr_download_total",
				Help: "Total number of file downloads",
			},
			[]string{"outcome"},
		),
		DownloadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scr_download_bytes",
				Help:    "Downloaded file size in bytes",
				Buckets: sizeBuckets,
			},
		),
	}
}

// RecordFetch records one document fetch
func (m *Metrics) RecordFetch(scheme, outcome string, duration time.Duration, size int) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(scheme, outcome).Inc()
	m.FetchDuration.WithLabelValues(scheme).Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		m.FetchBytes.Observe(float64(size))
	}
}

// RecordQuery records one selector or XPath query
func (m *Metrics) RecordQuery(kind, outcome string) {
	if m == nil {
		return
	}
	m.QueryTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordDownload records one file download
func (m *Metrics) RecordDownload(outcome string, size int64) {
	if m == nil {
		return
	}
	m.DownloadTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.DownloadBytes.Observe(float64(size))
	}
}
