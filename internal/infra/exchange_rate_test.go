package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"weeklypay_go/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{"meta":{"currency":"KRW","symbol":"USDKRW=X","regularMarketPrice":1391.2,"previousClose":1388.0},
"indicators":{"quote":[{"close":[1385.5,null,1380.5,null]}]}}],"error":null}}`

func newRateServer(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/USDKRW=X", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestExchangeRateClient_FetchRate(t *testing.T) {
	server, calls := newRateServer(t, http.StatusOK, chartBody)
	client := NewExchangeRateClientWithConfig(server.URL, "USDKRW=X", 0)

	rate, err := client.FetchRate(context.Background())
	require.NoError(t, err)

	// last non-null close wins over meta price
	assert.True(t, rate.Equal(decimal.RequireFromString("1380.5")), "got %s", rate)
	assert.Equal(t, 1, *calls)
}

func TestExchangeRateClient_MetaFallback(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"regularMarketPrice":1402.25},"indicators":{"quote":[{"close":[null]}]}}]}}`
	server, _ := newRateServer(t, http.StatusOK, body)
	client := NewExchangeRateClientWithConfig(server.URL, "", 0)

	rate, err := client.FetchRate(context.Background())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("1402.25")))
}

func TestExchangeRateClient_EmptyResponse(t *testing.T) {
	server, _ := newRateServer(t, http.StatusOK, `{"chart":{"result":[]}}`)
	client := NewExchangeRateClientWithConfig(server.URL, "", 0)

	_, err := client.FetchRate(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestExchangeRateClient_NoRetryOnFailure(t *testing.T) {
	server, calls := newRateServer(t, http.StatusTooManyRequests, "")
	client := NewExchangeRateClientWithConfig(server.URL, "", 0)

	_, err := client.FetchRate(context.Background())
	require.Error(t, err)

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.Equal(t, 1, *calls)
}

func TestExchangeRateClient_Malformed(t *testing.T) {
	server, _ := newRateServer(t, http.StatusOK, `{"chart":`)
	client := NewExchangeRateClientWithConfig(server.URL, "", 0)

	_, err := client.FetchRate(context.Background())
	assert.Error(t, err)
}
