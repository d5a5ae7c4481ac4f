// Package api exposes the dashboard data and calculators over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"weeklypay_go/internal/catalog"
	"weeklypay_go/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DefaultTicker is the fund the dashboard opens on.
const DefaultTicker = "MSTW"

// SessionSource classifies the current market session.
type SessionSource interface {
	Current() domain.SessionStatus
}

// QuoteSource serves cached quote snapshots.
type QuoteSource interface {
	Get(ctx context.Context, symbols []string) domain.QuoteSnapshot
	Refresh(ctx context.Context, symbols []string) domain.QuoteSnapshot
}

// Options holds the calculator settings.
type Options struct {
	TaxRate       decimal.Decimal
	SnowballWeeks int
}

// Handler serves the dashboard API.
type Handler struct {
	catalog  *catalog.Catalog
	sessions SessionSource
	quotes   QuoteSource
	opts     Options
	logger   *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(cat *catalog.Catalog, sessions SessionSource, quotes QuoteSource, opts Options) *Handler {
	return &Handler{
		catalog:  cat,
		sessions: sessions,
		quotes:   quotes,
		opts:     opts,
		logger:   slog.Default().With("module", "api"),
	}
}

// RegisterRoutes binds the API endpoints to r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/session", h.Session)
		v1.GET("/quotes", h.Quotes)
		v1.POST("/quotes/refresh", h.RefreshQuotes)
		v1.GET("/dashboard", h.Dashboard)
		v1.GET("/etfs", h.ListETFs)
		v1.GET("/etfs/:ticker", h.GetETF)
	}

	calc := v1.Group("/calc")
	{
		calc.POST("/portfolio", h.CalcPortfolio)
		calc.POST("/payout", h.CalcPayout)
		calc.POST("/averaging", h.CalcAveraging)
		calc.POST("/stress", h.CalcStress)
		calc.POST("/breakeven", h.CalcBreakeven)
		calc.POST("/income", h.CalcIncomeTarget)
		calc.POST("/snowball", h.CalcSnowball)
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Session returns the current market session.
func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Current())
}

type quotesResponse struct {
	FXRate         decimal.Decimal            `json:"fx_rate"`
	Prices         map[string]decimal.Decimal `json:"prices"`
	FetchedAt      time.Time                  `json:"fetched_at"`
	FetchedAtLabel string                     `json:"fetched_at_label"`
}

func newQuotesResponse(s domain.QuoteSnapshot) quotesResponse {
	return quotesResponse{
		FXRate:         s.FXRate,
		Prices:         s.Prices,
		FetchedAt:      s.FetchedAt,
		FetchedAtLabel: s.FetchedAtLabel(),
	}
}

// maxQuoteSymbols bounds the ?symbols= list before it is resolved.
const maxQuoteSymbols = 64

// Quotes returns a snapshot for ?symbols=A,B or, by default, the whole catalog.
// Only catalog tickers are accepted.
func (h *Handler) Quotes(c *gin.Context) {
	symbols, err := h.requestedSymbols(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	snap := h.quotes.Get(c.Request.Context(), symbols)
	c.JSON(http.StatusOK, newQuotesResponse(snap))
}

// RefreshQuotes drops the cache and fetches anew.
func (h *Handler) RefreshQuotes(c *gin.Context) {
	symbols, err := h.requestedSymbols(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	snap := h.quotes.Refresh(c.Request.Context(), symbols)
	h.logger.Info("Quotes refreshed on request", slog.String("request_id", requestID(c)))
	c.JSON(http.StatusOK, newQuotesResponse(snap))
}

// requestedSymbols resolves ?symbols= against the catalog. Unknown tickers
// and oversized lists are rejected with domain.ErrInvalidInput.
func (h *Handler) requestedSymbols(c *gin.Context) ([]string, error) {
	raw := c.Query("symbols")
	if raw == "" {
		return h.catalog.Symbols(), nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) > maxQuoteSymbols {
		return nil, fmt.Errorf("%w: at most %d symbols, got %d", domain.ErrInvalidInput, maxQuoteSymbols, len(parts))
	}

	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if strings.TrimSpace(s) == "" {
			continue
		}
		etf, err := h.catalog.Lookup(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		if _, dup := seen[etf.Ticker]; dup {
			continue
		}
		seen[etf.Ticker] = struct{}{}
		out = append(out, etf.Ticker)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no symbols given", domain.ErrInvalidInput)
	}
	return out, nil
}

type fundView struct {
	domain.ETF
	Price       decimal.Decimal `json:"price"`
	GrossKRW    decimal.Decimal `json:"gross_krw"`
	NetKRW      decimal.Decimal `json:"net_krw"`
	PriceStatus string          `json:"price_status"`
}

type dashboardResponse struct {
	Session  domain.SessionStatus  `json:"session"`
	Quotes   quotesResponse        `json:"quotes"`
	Schedule domain.PayoutSchedule `json:"schedule"`
	Top      domain.ETF            `json:"top"`
	Selected fundView              `json:"selected"`
	TaxRate  decimal.Decimal       `json:"tax_rate"`
}

// Dashboard combines session, quotes, schedule and the selected fund
// (?ticker=, default MSTW).
func (h *Handler) Dashboard(c *gin.Context) {
	ticker := c.DefaultQuery("ticker", DefaultTicker)
	etf, err := h.catalog.Lookup(ticker)
	if err != nil {
		h.fail(c, err)
		return
	}

	snap := h.quotes.Get(c.Request.Context(), h.catalog.Symbols())
	view, err := h.fundView(etf, snap)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboardResponse{
		Session:  h.sessions.Current(),
		Quotes:   newQuotesResponse(snap),
		Schedule: h.catalog.Schedule(),
		Top:      h.catalog.Top(),
		Selected: view,
		TaxRate:  h.opts.TaxRate,
	})
}

// ListETFs returns the catalog ordered by ticker.
func (h *Handler) ListETFs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"schedule": h.catalog.Schedule(),
		"etfs":     h.catalog.All(),
	})
}

// GetETF returns one fund with its current price and per-share income.
func (h *Handler) GetETF(c *gin.Context) {
	etf, err := h.catalog.Lookup(c.Param("ticker"))
	if err != nil {
		h.fail(c, err)
		return
	}

	snap := h.quotes.Get(c.Request.Context(), h.catalog.Symbols())
	view, err := h.fundView(etf, snap)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// fail maps err to a status code and writes the error body.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownTicker):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", slog.String("request_id", requestID(c)), slog.Any("error", err))
	}
	c.JSON(status, gin.H{
		"error":      err.Error(),
		"request_id": requestID(c),
	})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      err.Error(),
		"request_id": requestID(c),
	})
}
