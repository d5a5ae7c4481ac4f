package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FetchedAtLayout is the wall-clock layout shown next to the FX badge.
const FetchedAtLayout = "15:04:05"

// QuoteSnapshot is the atomic result of one cache cycle.
// Prices holds an entry for every requested symbol; zero means unavailable.
type QuoteSnapshot struct {
	FXRate    decimal.Decimal            `json:"fx_rate"`
	Prices    map[string]decimal.Decimal `json:"prices"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Price returns the last price for symbol, or zero when it is unknown.
func (s QuoteSnapshot) Price(symbol string) decimal.Decimal {
	if p, ok := s.Prices[symbol]; ok {
		return p
	}
	return decimal.Zero
}

// FetchedAtLabel renders FetchedAt in the timezone it was recorded in.
func (s QuoteSnapshot) FetchedAtLabel() string {
	return s.FetchedAt.Format(FetchedAtLayout)
}

// Clone returns a copy whose price map can be modified freely.
func (s QuoteSnapshot) Clone() QuoteSnapshot {
	prices := make(map[string]decimal.Decimal, len(s.Prices))
	for k, v := range s.Prices {
		prices[k] = v
	}
	return QuoteSnapshot{
		FXRate:    s.FXRate,
		Prices:    prices,
		FetchedAt: s.FetchedAt,
	}
}
