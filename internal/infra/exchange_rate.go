package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weeklypay_go/internal/domain"

	"github.com/shopspring/decimal"
)

const maxBodyBytes = 4 << 20

// rateAPIResponse represents the Yahoo Finance v8 chart response
type rateAPIResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// ExchangeRateClient fetches the USD/KRW rate from the Yahoo chart endpoint
type ExchangeRateClient struct {
	symbol     string
	apiURL     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewExchangeRateClient creates a client for the default USDKRW=X pair
func NewExchangeRateClient() *ExchangeRateClient {
	return &ExchangeRateClient{
		symbol: DefaultFXSymbol,
		apiURL: DefaultChartURL,
		httpClient: &http.Client{
			Timeout: DefaultHTTPTimeout * time.Second,
		},
		logger: slog.Default().With("module", "exchange_rate"),
	}
}

// NewExchangeRateClientWithConfig creates a client with custom configuration
func NewExchangeRateClientWithConfig(apiURL, symbol string, timeout time.Duration) *ExchangeRateClient {
	client := NewExchangeRateClient()
	if apiURL != "" {
		client.apiURL = strings.TrimRight(apiURL, "/")
	}
	if symbol != "" {
		client.symbol = symbol
	}
	if timeout > 0 {
		client.httpClient.Timeout = timeout
	}
	return client
}

// FetchRate returns the most recent daily close for the pair.
// Failures are returned as-is; callers decide on a fallback.
func (c *ExchangeRateClient) FetchRate(ctx context.Context) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/%s?range=1d&interval=1d", c.apiURL, url.PathEscape(c.symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "request", err)
	}

	// Add browser-like User-Agent to avoid bot detection
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, &domain.UpstreamError{Source: "yahoo_chart", Op: "request", StatusCode: resp.StatusCode, Err: domain.ErrUnexpectedStatus}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "read", err)
	}

	var data rateAPIResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "decode", err)
	}
	if data.Chart.Error != nil {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "decode",
			fmt.Errorf("%s: %s", data.Chart.Error.Code, data.Chart.Error.Description))
	}
	if len(data.Chart.Result) == 0 {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "decode", domain.ErrEmptyResponse)
	}

	result := data.Chart.Result[0]
	var rate float64
	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil {
				rate = *closes[i]
				break
			}
		}
	}
	if rate <= 0 {
		rate = result.Meta.RegularMarketPrice
	}
	if rate <= 0 {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "decode", domain.ErrEmptyResponse)
	}

	newRate := decimal.NewFromFloat(rate)
	c.logger.Debug("Exchange rate fetched", slog.String("symbol", c.symbol), slog.String("rate", newRate.String()))
	return newRate, nil
}
