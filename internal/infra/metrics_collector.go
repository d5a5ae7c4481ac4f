package infra

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "weeklypay"

// MetricsCollector exports a Metrics snapshot to Prometheus on every scrape.
type MetricsCollector struct {
	m *Metrics

	cacheHits       *prometheus.Desc
	cacheMisses     *prometheus.Desc
	fetchCycles     *prometheus.Desc
	fxFallbacks     *prometheus.Desc
	batchFailures   *prometheus.Desc
	symbolFallbacks *prometheus.Desc
	invalidations   *prometheus.Desc
	avgLatency      *prometheus.Desc
	lastFetch       *prometheus.Desc
}

// NewMetricsCollector wraps m as a prometheus.Collector.
func NewMetricsCollector(m *Metrics) *MetricsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "quotes", name), help, nil, nil)
	}
	return &MetricsCollector{
		m:               m,
		cacheHits:       desc("cache_hits_total", "Quote requests served from a fresh cache entry"),
		cacheMisses:     desc("cache_misses_total", "Quote requests that required a live fetch"),
		fetchCycles:     desc("fetch_cycles_total", "Completed external fetch rounds"),
		fxFallbacks:     desc("fx_fallbacks_total", "FX fetches replaced by the fallback rate"),
		batchFailures:   desc("batch_failures_total", "Price batches that failed as a whole"),
		symbolFallbacks: desc("symbol_fallbacks_total", "Symbols given the zero price sentinel"),
		invalidations:   desc("invalidations_total", "Manual cache invalidations"),
		avgLatency:      desc("fetch_latency_avg_seconds", "Average duration of an external fetch round"),
		lastFetch:       desc("last_fetch_timestamp_seconds", "Unix time of the last completed fetch round"),
	}
}

// Describe implements prometheus.Collector.
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cacheHits
	ch <- c.cacheMisses
	ch <- c.fetchCycles
	ch <- c.fxFallbacks
	ch <- c.batchFailures
	ch <- c.symbolFallbacks
	ch <- c.invalidations
	ch <- c.avgLatency
	ch <- c.lastFetch
}

// Collect implements prometheus.Collector.
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(s.CacheHits))
	ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(s.CacheMisses))
	ch <- prometheus.MustNewConstMetric(c.fetchCycles, prometheus.CounterValue, float64(s.FetchCycles))
	ch <- prometheus.MustNewConstMetric(c.fxFallbacks, prometheus.CounterValue, float64(s.FXFallbacks))
	ch <- prometheus.MustNewConstMetric(c.batchFailures, prometheus.CounterValue, float64(s.BatchFailures))
	ch <- prometheus.MustNewConstMetric(c.symbolFallbacks, prometheus.CounterValue, float64(s.SymbolFallbacks))
	ch <- prometheus.MustNewConstMetric(c.invalidations, prometheus.CounterValue, float64(s.Invalidations))
	ch <- prometheus.MustNewConstMetric(c.avgLatency, prometheus.GaugeValue, float64(s.AvgLatencyNs)/1e9)
	ch <- prometheus.MustNewConstMetric(c.lastFetch, prometheus.GaugeValue, float64(s.LastFetchUnix))
}
