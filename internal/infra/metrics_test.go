package infra

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordFetch(t *testing.T) {
	m := NewMetrics()
	at := time.Unix(1_700_000_000, 0)

	m.RecordFetch(1000*time.Nanosecond, at)
	m.RecordFetch(2000*time.Nanosecond, at)
	m.RecordFetch(3000*time.Nanosecond, at)

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.FetchCycles)
	assert.Equal(t, int64(2000), snap.AvgLatencyNs)
	assert.Equal(t, at.Unix(), snap.LastFetchUnix)
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.RecordHit()
	m.RecordHit()
	m.RecordMiss()
	m.RecordFXFallback()
	m.RecordBatchFailure()
	m.RecordSymbolFallbacks(3)
	m.RecordSymbolFallbacks(0)
	m.RecordInvalidation()

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.Equal(t, uint64(1), snap.FXFallbacks)
	assert.Equal(t, uint64(1), snap.BatchFailures)
	assert.Equal(t, uint64(3), snap.SymbolFallbacks)
	assert.Equal(t, uint64(1), snap.Invalidations)
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()

	m.RecordHit()
	m.RecordFetch(time.Millisecond, time.Now())
	m.RecordSymbolFallbacks(2)

	m.Reset()
	snap := m.Snapshot()

	assert.Zero(t, snap.CacheHits)
	assert.Zero(t, snap.FetchCycles)
	assert.Zero(t, snap.SymbolFallbacks)
	assert.Zero(t, snap.AvgLatencyNs)
}

func TestMetricsCollector(t *testing.T) {
	m := NewMetrics()
	m.RecordHit()
	m.RecordMiss()
	m.RecordMiss()

	c := NewMetricsCollector(m)
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	expected := `
# HELP weeklypay_quotes_cache_misses_total Quote requests that required a live fetch
# TYPE weeklypay_quotes_cache_misses_total counter
weeklypay_quotes_cache_misses_total 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "weeklypay_quotes_cache_misses_total")
	assert.NoError(t, err)

	assert.Equal(t, 9, testutil.CollectAndCount(c))
}
