package domain

import "github.com/shopspring/decimal"

// ETF describes one weekly-pay fund and its declared distribution for the week.
type ETF struct {
	Ticker   string          `yaml:"ticker" json:"ticker"`
	Name     string          `yaml:"name" json:"name"`
	Dividend decimal.Decimal `yaml:"dividend" json:"dividend"` // USD per share
	Rate     decimal.Decimal `yaml:"rate" json:"rate"`         // distribution rate %
	SECYield decimal.Decimal `yaml:"sec_yield" json:"sec_yield"`
	ROC      decimal.Decimal `yaml:"roc" json:"roc"` // return of capital %
}

// PaysDividend reports whether a positive distribution was declared.
func (e ETF) PaysDividend() bool {
	return e.Dividend.IsPositive()
}

// PayoutSchedule holds the display dates (KST) for the current payout week.
type PayoutSchedule struct {
	Week     string `yaml:"week" json:"week"`
	BuyLimit string `yaml:"buy_limit" json:"buy_limit"`
	ExDate   string `yaml:"ex_date" json:"ex_date"`
	PayDate  string `yaml:"pay_date" json:"pay_date"`
}
