package infra

import (
	"sync/atomic"
	"time"
)

// Metrics tracks quote-cache activity with atomic counters.
type Metrics struct {
	// Counters
	cacheHits       atomic.Uint64
	cacheMisses     atomic.Uint64
	fetchCycles     atomic.Uint64
	fxFallbacks     atomic.Uint64
	batchFailures   atomic.Uint64
	symbolFallbacks atomic.Uint64
	invalidations   atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	lastFetchUnix atomic.Int64
}

// NewMetrics creates an empty metrics set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordHit records a request served from a fresh cache entry.
func (m *Metrics) RecordHit() {
	m.cacheHits.Add(1)
}

// RecordMiss records a request that needed a live fetch.
func (m *Metrics) RecordMiss() {
	m.cacheMisses.Add(1)
}

// RecordFetch records one completed external round with its latency.
func (m *Metrics) RecordFetch(latency time.Duration, at time.Time) {
	m.fetchCycles.Add(1)
	m.latencySumNs.Add(latency.Nanoseconds())
	m.latencyCount.Add(1)
	m.lastFetchUnix.Store(at.Unix())
}

// RecordFXFallback records a substituted FX rate.
func (m *Metrics) RecordFXFallback() {
	m.fxFallbacks.Add(1)
}

// RecordBatchFailure records a price batch that failed as a whole.
func (m *Metrics) RecordBatchFailure() {
	m.batchFailures.Add(1)
}

// RecordSymbolFallbacks records symbols that were given the zero sentinel.
func (m *Metrics) RecordSymbolFallbacks(n int) {
	if n > 0 {
		m.symbolFallbacks.Add(uint64(n))
	}
}

// RecordInvalidation records a manual cache clear.
func (m *Metrics) RecordInvalidation() {
	m.invalidations.Add(1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	CacheHits       uint64
	CacheMisses     uint64
	FetchCycles     uint64
	FXFallbacks     uint64
	BatchFailures   uint64
	SymbolFallbacks uint64
	Invalidations   uint64
	AvgLatencyNs    int64
	LastFetchUnix   int64
	Timestamp       time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		CacheHits:       m.cacheHits.Load(),
		CacheMisses:     m.cacheMisses.Load(),
		FetchCycles:     m.fetchCycles.Load(),
		FXFallbacks:     m.fxFallbacks.Load(),
		BatchFailures:   m.batchFailures.Load(),
		SymbolFallbacks: m.symbolFallbacks.Load(),
		Invalidations:   m.invalidations.Load(),
		AvgLatencyNs:    avgLatency,
		LastFetchUnix:   m.lastFetchUnix.Load(),
		Timestamp:       time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.fetchCycles.Store(0)
	m.fxFallbacks.Store(0)
	m.batchFailures.Store(0)
	m.symbolFallbacks.Store(0)
	m.invalidations.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.lastFetchUnix.Store(0)
}
