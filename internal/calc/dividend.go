package calc

import (
	"errors"

	"weeklypay_go/internal/domain"

	"github.com/shopspring/decimal"
)

// PerShareIncome is one share's weekly distribution in KRW.
type PerShareIncome struct {
	GrossKRW decimal.Decimal `json:"gross_krw"`
	NetKRW   decimal.Decimal `json:"net_krw"`
}

// PerShare converts etf's declared dividend to KRW before and after tax.
func PerShare(etf domain.ETF, fx, tax decimal.Decimal) (PerShareIncome, error) {
	if err := errors.Join(
		nonNegative("dividend", etf.Dividend),
		nonNegative("fx rate", fx),
		validTaxRate(tax),
	); err != nil {
		return PerShareIncome{}, err
	}

	gross := etf.Dividend.Mul(fx)
	return PerShareIncome{
		GrossKRW: gross,
		NetKRW:   gross.Mul(one.Sub(tax)),
	}, nil
}

// Holding is a quantity of one fund.
type Holding struct {
	Ticker   string `json:"ticker"`
	Quantity int64  `json:"quantity"`
}

// ETFLookup resolves a ticker to its catalog entry.
type ETFLookup interface {
	Lookup(ticker string) (domain.ETF, error)
}

// PortfolioLine is the weekly income from one holding.
type PortfolioLine struct {
	Ticker   string          `json:"ticker"`
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Dividend decimal.Decimal `json:"dividend"`
	GrossKRW decimal.Decimal `json:"gross_krw"`
	NetKRW   decimal.Decimal `json:"net_krw"`
}

// PortfolioSummary totals the weekly income over all holdings.
type PortfolioSummary struct {
	Lines    []PortfolioLine `json:"lines"`
	GrossKRW decimal.Decimal `json:"gross_krw"`
	NetKRW   decimal.Decimal `json:"net_krw"`
}

// Portfolio sums dividend x quantity x fx over holdings. Unknown tickers fail
// with domain.ErrUnknownTicker.
func Portfolio(holdings []Holding, funds ETFLookup, fx, tax decimal.Decimal) (PortfolioSummary, error) {
	if err := errors.Join(nonNegative("fx rate", fx), validTaxRate(tax)); err != nil {
		return PortfolioSummary{}, err
	}

	keep := one.Sub(tax)
	summary := PortfolioSummary{
		Lines:    make([]PortfolioLine, 0, len(holdings)),
		GrossKRW: decimal.Zero,
	}
	for _, h := range holdings {
		if err := nonNegativeInt("quantity of "+h.Ticker, h.Quantity); err != nil {
			return PortfolioSummary{}, err
		}
		etf, err := funds.Lookup(h.Ticker)
		if err != nil {
			return PortfolioSummary{}, err
		}

		gross := etf.Dividend.Mul(decimal.NewFromInt(h.Quantity)).Mul(fx)
		summary.Lines = append(summary.Lines, PortfolioLine{
			Ticker:   etf.Ticker,
			Name:     etf.Name,
			Quantity: h.Quantity,
			Dividend: etf.Dividend,
			GrossKRW: gross,
			NetKRW:   gross.Mul(keep),
		})
		summary.GrossKRW = summary.GrossKRW.Add(gross)
	}
	summary.NetKRW = summary.GrossKRW.Mul(keep)

	return summary, nil
}

// PayoutBreakdown splits a weekly payout into tax and take-home.
type PayoutBreakdown struct {
	PreTax  decimal.Decimal `json:"pre_tax"`
	Tax     decimal.Decimal `json:"tax"`
	PostTax decimal.Decimal `json:"post_tax"`
}

// Payout computes the weekly payout for shares given the gross KRW per share.
func Payout(shares int64, grossPerShare, tax decimal.Decimal) (PayoutBreakdown, error) {
	if err := errors.Join(
		nonNegativeInt("shares", shares),
		nonNegative("gross per share", grossPerShare),
		validTaxRate(tax),
	); err != nil {
		return PayoutBreakdown{}, err
	}

	pre := decimal.NewFromInt(shares).Mul(grossPerShare)
	withheld := pre.Mul(tax)
	return PayoutBreakdown{
		PreTax:  pre,
		Tax:     withheld,
		PostTax: pre.Sub(withheld),
	}, nil
}
