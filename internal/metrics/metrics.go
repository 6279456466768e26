package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landedcost_requests_total",
			Help: "Total number of requests per path",
		},
		[]string{"path"},
	)

	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "landedcost_request_duration_seconds",
			Help:    "Request duration in seconds per path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landedcost_request_errors_total",
			Help: "Total number of error responses per path and status code",
		},
		[]string{"path", "code"},
	)
)

var (
	CalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landedcost_calculations_total",
			Help: "Landed cost calculations by outcome",
		},
		[]string{"outcome"},
	)

	ReportsRenderedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landedcost_reports_rendered_total",
			Help: "PDF reports produced, by delivery channel",
		},
		[]string{"channel"},
	)
)

var (
	CatalogRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "landedcost_catalog_rows",
			Help: "Tariff rows in the served catalog",
		},
	)

	CatalogWarnings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "landedcost_catalog_warnings",
			Help: "Data-quality warnings raised by the last successful catalog load",
		},
	)

	CatalogLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landedcost_catalog_loads_total",
			Help: "Catalog load attempts by result",
		},
		[]string{"result"},
	)
)

// UpdateCatalogMetrics records the outcome of a catalog load.
func UpdateCatalogMetrics(rows, warnings int, err error) {
	if err != nil {
		CatalogLoadsTotal.WithLabelValues("error").Inc()
		return
	}
	CatalogLoadsTotal.WithLabelValues("ok").Inc()
	CatalogRows.Set(float64(rows))
	CatalogWarnings.Set(float64(warnings))
}

var (
	ScheduledJobLastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "landedcost_job_last_run_timestamp",
			Help: "Unix timestamp of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobLastDurationSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "landedcost_job_last_duration_seconds",
			Help: "Duration of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landedcost_job_failures_total",
			Help: "Total number of failed executions per job",
		},
		[]string{"job"},
	)
)

func UpdateJobMetrics(job string, startedAt time.Time, err error) {
	dur := time.Since(startedAt).Seconds()
	ScheduledJobLastDurationSeconds.WithLabelValues(job).Set(dur)
	ScheduledJobLastRun.WithLabelValues(job).Set(float64(time.Now().Unix()))
	if err != nil {
		ScheduledJobFailuresTotal.WithLabelValues(job).Inc()
	}
}
