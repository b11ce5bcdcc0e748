// Package metrics exposes Prometheus instruments for the download engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus instruments. It satisfies the
// download service's Observer interface.
type Metrics struct {
	probesTotal       *prometheus.CounterVec
	downloadsTotal    *prometheus.CounterVec
	downloadDuration  prometheus.Histogram
	busyRejectedTotal prometheus.Counter
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		probesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vidgrab",
			Name:      "probes_total",
			Help:      "Metadata probes by outcome.",
		}, []string{"outcome"}),
		downloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vidgrab",
			Name:      "downloads_total",
			Help:      "Downloads by outcome.",
		}, []string{"outcome"}),
		downloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vidgrab",
			Name:      "download_duration_seconds",
			Help:      "Time spent fetching media.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		busyRejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vidgrab",
			Name:      "busy_rejections_total",
			Help:      "Operations rejected because the user was already busy.",
		}),
	}

	reg.MustRegister(m.probesTotal, m.downloadsTotal, m.downloadDuration, m.busyRejectedTotal)
	return m
}

// ProbeFinished records a probe outcome ("ok" or "error").
func (m *Metrics) ProbeFinished(outcome string) {
	m.probesTotal.WithLabelValues(outcome).Inc()
}

// DownloadFinished records a download outcome and its duration.
func (m *Metrics) DownloadFinished(outcome string, elapsed time.Duration) {
	m.downloadsTotal.WithLabelValues(outcome).Inc()
	m.downloadDuration.Observe(elapsed.Seconds())
}

// BusyRejected records a concurrency-guard rejection.
func (m *Metrics) BusyRejected() {
	m.busyRejectedTotal.Inc()
}
