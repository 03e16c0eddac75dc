package cleanup

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// runMetrics holds the gauges exported after a run for the node exporter
// textfile collector.
type runMetrics struct {
	registry  *prometheus.Registry
	issues    *prometheus.GaugeVec
	total     *prometheus.GaugeVec
	success   prometheus.Gauge
	duration  prometheus.Gauge
	timestamp prometheus.Gauge
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),
		issues: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "passkeep_cleanup_issues",
			Help: "Inconsistent rows found or fixed by one cleanup job in the last run.",
		}, []string{"table", "job", "mode"}),
		total: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "passkeep_cleanup_issues_total",
			Help: "Inconsistent rows found or fixed across all jobs in the last run.",
		}, []string{"mode"}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "passkeep_cleanup_last_run_success",
			Help: "1 when the last cleanup run completed, 0 when it failed.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "passkeep_cleanup_last_run_duration_seconds",
			Help: "Wall time of the last cleanup run.",
		}),
		timestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "passkeep_cleanup_last_run_timestamp_seconds",
			Help: "Unix time the last cleanup run finished.",
		}),
	}
	m.registry.MustRegister(m.issues, m.total, m.success, m.duration, m.timestamp)
	return m
}

func (m *runMetrics) observe(report Report, runErr error, started, finished time.Time) {
	mode := report.Mode()
	for _, job := range report.Jobs {
		m.issues.WithLabelValues(job.Table, job.Job, mode).Add(float64(job.Count))
	}
	m.total.WithLabelValues(mode).Set(float64(report.Total))
	if runErr == nil {
		m.success.Set(1)
	} else {
		m.success.Set(0)
	}
	m.duration.Set(finished.Sub(started).Seconds())
	m.timestamp.Set(float64(finished.Unix()))
}

// WriteMetricsTextfile writes run metrics to path in the Prometheus text
// format. The file is replaced atomically.
func WriteMetricsTextfile(path string, report Report, runErr error, started, finished time.Time) error {
	m := newRunMetrics()
	m.observe(report, runErr, started, finished)
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
