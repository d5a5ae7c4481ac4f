package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"weeklypay_go/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newChartServer answers /{symbol} with the body registered for it and 404 otherwise.
func newChartServer(t *testing.T, bodies map[string]string) (*httptest.Server, *sync.Map) {
	t.Helper()
	var seen sync.Map
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/")
		seen.Store(symbol, r.URL.RawQuery)
		body, ok := bodies[symbol]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &seen
}

func TestChartClient_FetchPrices(t *testing.T) {
	server, seen := newChartServer(t, map[string]string{
		"MSTW": `{"chart":{"result":[{"meta":{"symbol":"MSTW","regularMarketPrice":11.1},"indicators":{"quote":[{"close":[11.0,11.25,null]}]}}]}}`,
		"HOOW": `{"chart":{"result":[{"meta":{"symbol":"HOOW","regularMarketPrice":47.1},"indicators":{"quote":[{"close":[]}]}}]}}`,
	})
	client := NewChartClient(server.URL, 0)

	prices, err := client.FetchPrices(context.Background(), []string{"MSTW", "HOOW", "NOPE"})
	require.NoError(t, err)

	assert.Len(t, prices, 2)
	assert.True(t, prices["MSTW"].Equal(decimal.RequireFromString("11.25")), "latest non-null close wins")
	assert.True(t, prices["HOOW"].Equal(decimal.RequireFromString("47.1")), "meta price when no closes")

	q, ok := seen.Load("MSTW")
	require.True(t, ok)
	assert.Equal(t, "range=1d&interval=1d", q)
	_, ok = seen.Load("NOPE")
	assert.True(t, ok, "every symbol gets its own request")
}

func TestChartClient_OmitsUnusablePrices(t *testing.T) {
	server, _ := newChartServer(t, map[string]string{
		"A": `{"chart":{"result":[{"meta":{"regularMarketPrice":3},"indicators":{"quote":[{"close":[3.5]}]}}]}}`,
		"B": `{"chart":{"result":[{"meta":{"regularMarketPrice":0},"indicators":{"quote":[{"close":[null]}]}}]}}`,
		"C": `{"chart":{"result":[]}}`,
		"D": `not json`,
	})
	client := NewChartClient(server.URL, 0)

	prices, err := client.FetchPrices(context.Background(), []string{"A", "B", "C", "D"})
	require.NoError(t, err)

	assert.Len(t, prices, 1)
	assert.True(t, prices["A"].Equal(decimal.RequireFromString("3.5")))
}

func TestChartClient_AllFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()
	client := NewChartClient(server.URL, 0)

	prices, err := client.FetchPrices(context.Background(), []string{"A", "B"})
	require.Error(t, err)
	assert.Nil(t, prices)

	var upErr *domain.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusTooManyRequests, upErr.StatusCode)
	assert.True(t, errors.Is(err, domain.ErrUnexpectedStatus))
}

func TestChartClient_Empty(t *testing.T) {
	client := NewChartClient("http://127.0.0.1:1", 0)

	prices, err := client.FetchPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestChartClient_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":1}}]}}`))
	}))
	defer server.Close()

	client := NewChartClient(server.URL, 0)
	client.concurrency = 3

	symbols := make([]string, 12)
	for i := range symbols {
		symbols[i] = string(rune('A' + i))
	}
	prices, err := client.FetchPrices(context.Background(), symbols)
	require.NoError(t, err)

	assert.Len(t, prices, len(symbols))
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestChartClient_ContextCancelled(t *testing.T) {
	server, _ := newChartServer(t, map[string]string{
		"A": `{"chart":{"result":[{"meta":{"regularMarketPrice":1}}]}}`,
	})
	client := NewChartClient(server.URL, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchPrices(ctx, []string{"A"})
	assert.ErrorIs(t, err, context.Canceled)
}
