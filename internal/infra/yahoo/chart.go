package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"weeklypay_go/internal/domain"
	"weeklypay_go/internal/infra"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultChartConcurrency caps the number of chart requests in flight.
const DefaultChartConcurrency = 8

// ChartClient fetches last prices from the v8 chart endpoint, one request
// per symbol. Unlike the v7 quote endpoint it needs no cookie or crumb.
type ChartClient struct {
	baseURL     string
	concurrency int
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewChartClient creates a chart price client. An empty baseURL selects the
// public endpoint.
func NewChartClient(baseURL string, timeout time.Duration) *ChartClient {
	if baseURL == "" {
		baseURL = infra.DefaultChartURL
	}
	if timeout <= 0 {
		timeout = infra.DefaultHTTPTimeout * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = DefaultChartConcurrency
	transport.IdleConnTimeout = 30 * time.Second

	return &ChartClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		concurrency: DefaultChartConcurrency,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: slog.Default().With("module", "yahoo_chart_prices"),
	}
}

// FetchPrices fans out one chart request per symbol. A symbol whose request
// fails is left out of the map; an error is returned only when every
// symbol failed.
func (c *ChartClient) FetchPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(symbols))
	if len(symbols) == 0 {
		return prices, nil
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(c.concurrency)

	for _, symbol := range symbols {
		g.Go(func() error {
			price, err := c.fetchOne(ctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				c.logger.Warn("Skipping symbol without chart price", slog.String("symbol", symbol), slog.Any("error", err))
				return nil
			}
			prices[symbol] = price
			return nil
		})
	}
	_ = g.Wait()

	if len(prices) == 0 {
		return nil, errors.Join(errs...)
	}
	return prices, nil
}

func (c *ChartClient) fetchOne(ctx context.Context, symbol string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/%s?range=1d&interval=1d", c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "request", err)
	}
	req.Header.Set("User-Agent", infra.DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

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

	var data chartResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "decode", err)
	}
	if e := data.Chart.Error; e != nil {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "decode", fmt.Errorf("%s: %s", e.Code, e.Description))
	}
	if len(data.Chart.Result) == 0 {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "decode", domain.ErrEmptyResponse)
	}

	price := data.Chart.Result[0].lastPrice()
	if price <= 0 {
		return decimal.Zero, domain.NewUpstreamError("yahoo_chart", "decode", domain.ErrEmptyResponse)
	}
	return decimal.NewFromFloat(price), nil
}
