package api

import (
	"net/http"

	"weeklypay_go/internal/calc"
	"weeklypay_go/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) fundView(etf domain.ETF, snap domain.QuoteSnapshot) (fundView, error) {
	income, err := calc.PerShare(etf, snap.FXRate, h.opts.TaxRate)
	if err != nil {
		return fundView{}, err
	}

	price := snap.Price(etf.Ticker)
	status := "ok"
	if price.IsZero() {
		status = "unavailable"
	}
	return fundView{
		ETF:         etf,
		Price:       price,
		GrossKRW:    income.GrossKRW,
		NetKRW:      income.NetKRW,
		PriceStatus: status,
	}, nil
}

// fundContext resolves ticker and the quote data the calculators need.
type fundContext struct {
	etf    domain.ETF
	fx     decimal.Decimal
	price  decimal.Decimal
	income calc.PerShareIncome
}

func (h *Handler) loadFund(c *gin.Context, ticker string) (fundContext, error) {
	etf, err := h.catalog.Lookup(ticker)
	if err != nil {
		return fundContext{}, err
	}
	snap := h.quotes.Get(c.Request.Context(), h.catalog.Symbols())
	income, err := calc.PerShare(etf, snap.FXRate, h.opts.TaxRate)
	if err != nil {
		return fundContext{}, err
	}
	return fundContext{
		etf:    etf,
		fx:     snap.FXRate,
		price:  snap.Price(etf.Ticker),
		income: income,
	}, nil
}

type portfolioRequest struct {
	Holdings []calc.Holding `json:"holdings" binding:"required"`
}

// CalcPortfolio totals the weekly income over several holdings.
func (h *Handler) CalcPortfolio(c *gin.Context) {
	var req portfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	snap := h.quotes.Get(c.Request.Context(), h.catalog.Symbols())
	res, err := calc.Portfolio(req.Holdings, h.catalog, snap.FXRate, h.opts.TaxRate)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fx_rate": snap.FXRate, "result": res})
}

type sharesRequest struct {
	Ticker string `json:"ticker" binding:"required"`
	Shares int64  `json:"shares"`
}

// CalcPayout splits the weekly payout of shares into tax and take-home.
func (h *Handler) CalcPayout(c *gin.Context) {
	var req sharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	fund, err := h.loadFund(c, req.Ticker)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := calc.Payout(req.Shares, fund.income.GrossKRW, h.opts.TaxRate)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fx_rate": fund.fx, "result": res})
}

type averagingRequest struct {
	Ticker       string           `json:"ticker" binding:"required"`
	AveragePrice decimal.Decimal  `json:"average_price"`
	Quantity     int64            `json:"quantity"`
	AddQuantity  int64            `json:"add_quantity"`
	Price        *decimal.Decimal `json:"price,omitempty"`
}

// CalcAveraging simulates buying more shares at the current (or given) price.
func (h *Handler) CalcAveraging(c *gin.Context) {
	var req averagingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	fund, err := h.loadFund(c, req.Ticker)
	if err != nil {
		h.fail(c, err)
		return
	}
	price := fund.price
	if req.Price != nil {
		price = *req.Price
	}

	res, err := calc.AveragingDown(req.AveragePrice, req.Quantity, req.AddQuantity, price, fund.etf.Dividend)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": price, "result": res})
}

// CalcStress shows the net payout of shares under dividend cuts.
func (h *Handler) CalcStress(c *gin.Context) {
	var req sharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	fund, err := h.loadFund(c, req.Ticker)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := calc.StressTest(req.Shares, fund.income.NetKRW)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fx_rate": fund.fx, "result": res})
}

type breakevenRequest struct {
	Ticker       string           `json:"ticker" binding:"required"`
	AveragePrice *decimal.Decimal `json:"average_price,omitempty"`
}

// CalcBreakeven returns how many weekly dividends repay the average price.
func (h *Handler) CalcBreakeven(c *gin.Context) {
	var req breakevenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	fund, err := h.loadFund(c, req.Ticker)
	if err != nil {
		h.fail(c, err)
		return
	}
	avg := fund.price
	if req.AveragePrice != nil {
		avg = *req.AveragePrice
	}

	res, err := calc.Breakeven(avg, fund.etf.Dividend)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"average_price": avg, "result": res})
}

type incomeRequest struct {
	Ticker       string          `json:"ticker" binding:"required"`
	WeeklyTarget decimal.Decimal `json:"weekly_target_krw"`
}

// CalcIncomeTarget returns the position needed for a weekly net income.
func (h *Handler) CalcIncomeTarget(c *gin.Context) {
	var req incomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	fund, err := h.loadFund(c, req.Ticker)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := calc.IncomeTarget(req.WeeklyTarget, fund.income.NetKRW, fund.price, fund.fx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fx_rate": fund.fx, "price": fund.price, "result": res})
}

type snowballRequest struct {
	Ticker string `json:"ticker" binding:"required"`
	Shares int64  `json:"shares"`
	Weeks  *int   `json:"weeks,omitempty"`
}

// CalcSnowball reinvests the weekly payout and projects the position value.
func (h *Handler) CalcSnowball(c *gin.Context) {
	var req snowballRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	fund, err := h.loadFund(c, req.Ticker)
	if err != nil {
		h.fail(c, err)
		return
	}
	weeks := h.opts.SnowballWeeks
	if req.Weeks != nil {
		weeks = *req.Weeks
	}

	res, err := calc.Snowball(req.Shares, fund.income.NetKRW, fund.price, fund.fx, weeks)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fx_rate": fund.fx, "price": fund.price, "result": res})
}
