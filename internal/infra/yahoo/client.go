// Package yahoo implements last-price sources backed by Yahoo Finance:
// per-symbol v8 chart requests, or one batched v7 quote request.
package yahoo

import (
	"bytes"
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
	"weeklypay_go/internal/infra"

	"github.com/shopspring/decimal"
)

const maxBodyBytes = 8 << 20

// Client fetches last-traded prices for many symbols in one request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a quote client. An empty baseURL selects the public endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = infra.DefaultQuoteURL
	}
	if timeout <= 0 {
		timeout = infra.DefaultHTTPTimeout * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: slog.Default().With("module", "yahoo_quote"),
	}
}

// FetchPrices returns the last price of every symbol it could extract.
// Symbols missing from the answer, or whose price is not a number, are
// left out of the map; an error is returned only when the batch failed.
func (c *Client) FetchPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	if len(symbols) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	entries, err := c.fetch(ctx, symbols)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]string, len(symbols))
	for _, s := range symbols {
		wanted[strings.ToUpper(s)] = s
	}

	prices := make(map[string]decimal.Decimal, len(symbols))
	for i, raw := range entries {
		var entry quoteEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			c.logger.Warn("Skipping malformed quote entry", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		requested, ok := wanted[strings.ToUpper(entry.Symbol)]
		if !ok {
			continue
		}
		price, err := parsePrice(entry.RegularMarketPrice)
		if err != nil {
			c.logger.Warn("Skipping quote without usable price", slog.String("symbol", entry.Symbol), slog.Any("error", err))
			continue
		}
		prices[requested] = price
	}

	return prices, nil
}

func (c *Client) fetch(ctx context.Context, symbols []string) ([]json.RawMessage, error) {
	encoded := make([]string, len(symbols))
	for i, s := range symbols {
		encoded[i] = url.QueryEscape(s)
	}
	u := c.baseURL + "?symbols=" + strings.Join(encoded, ",")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, domain.NewUpstreamError("yahoo_quote", "request", err)
	}
	req.Header.Set("User-Agent", infra.DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewUpstreamError("yahoo_quote", "request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{Source: "yahoo_quote", Op: "request", StatusCode: resp.StatusCode, Err: domain.ErrUnexpectedStatus}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.NewUpstreamError("yahoo_quote", "read", err)
	}

	var data quoteResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, domain.NewUpstreamError("yahoo_quote", "decode", err)
	}
	if e := data.QuoteResponse.Error; e != nil {
		return nil, domain.NewUpstreamError("yahoo_quote", "decode", fmt.Errorf("%s: %s", e.Code, e.Description))
	}
	if len(data.QuoteResponse.Result) == 0 {
		return nil, domain.NewUpstreamError("yahoo_quote", "decode", domain.ErrEmptyResponse)
	}

	return data.QuoteResponse.Result, nil
}

// parsePrice accepts a JSON number that is finite and not negative.
func parsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, domain.ErrEmptyResponse
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return decimal.Zero, err
	}
	if f < 0 {
		return decimal.Zero, fmt.Errorf("negative price %v", f)
	}
	return decimal.NewFromFloat(f), nil
}
