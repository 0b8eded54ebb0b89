package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "region_sync"

// PrometheusCollector renders a Collector snapshot as Prometheus metrics.
type PrometheusCollector struct {
	source *Collector

	syncsTotal      *prometheus.Desc
	syncsSuccessful *prometheus.Desc
	syncsFailed     *prometheus.Desc
	successRate     *prometheus.Desc
	lastDuration    *prometheus.Desc
	regionErrors    *prometheus.Desc
	regionUp        *prometheus.Desc
	recordsTotal    *prometheus.Desc
	recordOps       *prometheus.Desc
}

// NewPrometheusCollector creates a prometheus.Collector over c.
func NewPrometheusCollector(c *Collector) *PrometheusCollector {
	return &PrometheusCollector{
		source: c,
		syncsTotal: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "sync", "runs_total"),
			"Total number of reconciliation runs started", nil, nil),
		syncsSuccessful: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "sync", "runs_successful_total"),
			"Total number of reconciliation runs that completed without errors", nil, nil),
		syncsFailed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "sync", "runs_failed_total"),
			"Total number of reconciliation runs that reported a failure", nil, nil),
		successRate: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "sync", "success_rate_percent"),
			"Successful runs as a percentage of all runs", nil, nil),
		lastDuration: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "sync", "last_duration_seconds"),
			"Duration of the most recent run", nil, nil),
		regionErrors: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "region", "errors_total"),
			"Read or write failures attributed to a region", []string{"region"}, nil),
		regionUp: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "region", "status"),
			"Region liveness, 1 for the current status label", []string{"region", "status"}, nil),
		recordsTotal: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "records", "total"),
			"Distinct record ids seen by the last run", nil, nil),
		recordOps: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "records", "operations_total"),
			"Record mutations through the write path", []string{"operation"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (p *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.syncsTotal
	ch <- p.syncsSuccessful
	ch <- p.syncsFailed
	ch <- p.successRate
	ch <- p.lastDuration
	ch <- p.regionErrors
	ch <- p.regionUp
	ch <- p.recordsTotal
	ch <- p.recordOps
}

// Collect implements prometheus.Collector.
func (p *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	s := p.source.Snapshot()

	ch <- prometheus.MustNewConstMetric(p.syncsTotal, prometheus.CounterValue, float64(s.TotalSyncs))
	ch <- prometheus.MustNewConstMetric(p.syncsSuccessful, prometheus.CounterValue, float64(s.SuccessfulSyncs))
	ch <- prometheus.MustNewConstMetric(p.syncsFailed, prometheus.CounterValue, float64(s.FailedSyncs))
	ch <- prometheus.MustNewConstMetric(p.successRate, prometheus.GaugeValue, s.SuccessRate)

	var duration float64
	if s.LastSyncDurationMs != nil {
		duration = float64(*s.LastSyncDurationMs) / 1000
	}
	ch <- prometheus.MustNewConstMetric(p.lastDuration, prometheus.GaugeValue, duration)

	for _, name := range p.source.regions {
		rs := s.Regions[name]
		ch <- prometheus.MustNewConstMetric(p.regionErrors, prometheus.CounterValue, float64(rs.Errors), name)
		ch <- prometheus.MustNewConstMetric(p.regionUp, prometheus.GaugeValue, 1, name, rs.Status)
	}

	ch <- prometheus.MustNewConstMetric(p.recordsTotal, prometheus.GaugeValue, float64(s.TotalRecords))
	ch <- prometheus.MustNewConstMetric(p.recordOps, prometheus.CounterValue, float64(s.RecordsCreated), "created")
	ch <- prometheus.MustNewConstMetric(p.recordOps, prometheus.CounterValue, float64(s.RecordsUpdated), "updated")
	ch <- prometheus.MustNewConstMetric(p.recordOps, prometheus.CounterValue, float64(s.RecordsDeleted), "deleted")
}
