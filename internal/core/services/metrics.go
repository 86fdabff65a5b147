package services

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts crawl progress on a private Prometheus registry so several
// miners in one process never collide. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry
	pages    prometheus.Counter
	resolved prometheus.Counter
	skipped  prometheus.Counter
	records  prometheus.Counter
	requests *prometheus.CounterVec
}

// NewMetrics creates and registers the crawl counters.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "touchminer_pages_total",
			Help: "Commit list pages processed.",
		}),
		resolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "touchminer_commits_resolved_total",
			Help: "Commits whose detail was resolved.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "touchminer_commits_skipped_total",
			Help: "Commits skipped after a recoverable failure.",
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "touchminer_touch_records_total",
			Help: "Touch records produced.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "touchminer_api_requests_total",
			Help: "GitHub API attempts by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
	}
	m.registry.MustRegister(m.pages, m.resolved, m.skipped, m.records, m.requests)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// PageProcessed counts one list page.
func (m *Metrics) PageProcessed() {
	if m != nil {
		m.pages.Inc()
	}
}

// CommitResolved counts one resolved commit and the records it produced.
func (m *Metrics) CommitResolved(records int) {
	if m != nil {
		m.resolved.Inc()
		m.records.Add(float64(records))
	}
}

// CommitSkipped counts one skipped commit.
func (m *Metrics) CommitSkipped() {
	if m != nil {
		m.skipped.Inc()
	}
}

// ObserveRequest counts one API attempt. It matches the connector's observer hook.
func (m *Metrics) ObserveRequest(endpoint, outcome string) {
	if m != nil {
		m.requests.WithLabelValues(endpoint, outcome).Inc()
	}
}

// WriteTextfile writes the counters in the text exposition format for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
