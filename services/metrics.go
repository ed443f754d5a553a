// services/metrics.go
package services

import (
	"net/http"
	"time"

	"github.com/gewnthar/fundscout/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the ingest counters. It owns its registry so tests can
// build as many instances as they like. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal         *prometheus.CounterVec
	SourceFetchErrors *prometheus.CounterVec
	CandidatesTotal   prometheus.Counter
	InsertedTotal     prometheus.Counter
	RunDuration       prometheus.Histogram
	LastSuccess       prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fundscout_runs_total",
			Help: "Ingest runs by outcome (success, failed)",
		}, []string{"status"}),
		SourceFetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fundscout_source_fetch_errors_total",
			Help: "Sources skipped in a run after exhausting fetch attempts",
		}, []string{"agency"}),
		CandidatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fundscout_candidates_total",
			Help: "Candidate proposal records extracted",
		}),
		InsertedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fundscout_inserted_total",
			Help: "Proposal records newly persisted",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundscout_run_duration_seconds",
			Help:    "Wall time of an ingest run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fundscout_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
	reg.MustRegister(m.RunsTotal, m.SourceFetchErrors, m.CandidatesTotal, m.InsertedTotal, m.RunDuration, m.LastSuccess)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveSourceFailure(agency string) {
	if m == nil {
		return
	}
	m.SourceFetchErrors.WithLabelValues(agency).Inc()
}

// ObserveRun records a finished run. summary may be nil for runs that
// aborted before producing one.
func (m *Metrics) ObserveRun(summary *models.RunSummary, started time.Time, err error) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		m.RunsTotal.WithLabelValues("failed").Inc()
		return
	}
	m.RunsTotal.WithLabelValues("success").Inc()
	if summary != nil {
		m.CandidatesTotal.Add(float64(summary.Candidates))
		m.InsertedTotal.Add(float64(summary.Inserted))
		m.LastSuccess.Set(float64(summary.FinishedAt.Unix()))
	}
}
