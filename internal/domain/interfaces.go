package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ExchangeRateProvider returns the latest rate for a single currency pair.
type ExchangeRateProvider interface {
	FetchRate(ctx context.Context) (decimal.Decimal, error)
}

// PriceBatchProvider fetches last prices for many symbols in one call.
// A symbol whose value could not be extracted is omitted from the result;
// an error means the whole batch failed.
type PriceBatchProvider interface {
	FetchPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}
