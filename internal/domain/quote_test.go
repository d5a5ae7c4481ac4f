package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuoteSnapshot_Price(t *testing.T) {
	snap := QuoteSnapshot{Prices: map[string]decimal.Decimal{"MSTW": decimal.RequireFromString("12.34")}}

	assert.True(t, snap.Price("MSTW").Equal(decimal.RequireFromString("12.34")))
	assert.True(t, snap.Price("NOPE").IsZero())
}

func TestQuoteSnapshot_Clone(t *testing.T) {
	snap := QuoteSnapshot{
		FXRate: decimal.NewFromInt(1400),
		Prices: map[string]decimal.Decimal{"A": decimal.NewFromInt(1)},
	}

	clone := snap.Clone()
	clone.Prices["A"] = decimal.NewFromInt(2)

	assert.True(t, snap.Prices["A"].Equal(decimal.NewFromInt(1)), "original must not change")
	assert.True(t, clone.FXRate.Equal(snap.FXRate))
}

func TestQuoteSnapshot_FetchedAtLabel(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	snap := QuoteSnapshot{FetchedAt: time.Date(2026, 1, 5, 6, 7, 8, 0, loc)}

	assert.Equal(t, "06:07:08", snap.FetchedAtLabel())
}
