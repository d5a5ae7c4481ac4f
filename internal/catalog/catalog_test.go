package catalog

import (
	"sort"
	"testing"

	"weeklypay_go/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Default(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 23, c.Len())
	assert.True(t, sort.StringsAreSorted(c.Symbols()))
	assert.Equal(t, "1/6 (Tue)", c.Schedule().PayDate)
}

func TestLookup(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	etf, err := c.Lookup("mstw")
	require.NoError(t, err)
	assert.Equal(t, "MSTW", etf.Ticker)
	assert.True(t, etf.Dividend.Equal(decimal.RequireFromString("0.1608")))
	assert.True(t, etf.SECYield.Equal(decimal.RequireFromString("-0.51")))

	_, err = c.Lookup("SPY")
	assert.ErrorIs(t, err, domain.ErrUnknownTicker)
}

func TestTop(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	top := c.Top()
	assert.Equal(t, "MSTW", top.Ticker)
	assert.True(t, top.Rate.Equal(decimal.RequireFromString("85.39")))
}

func TestSymbols_ReturnsCopy(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	s := c.Symbols()
	s[0] = "ZZZZ"
	assert.NotEqual(t, "ZZZZ", c.Symbols()[0])
}

func TestParse_Errors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := Parse([]byte("etfs: []"))
		assert.Error(t, err)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := Parse([]byte(`
etfs:
  - {ticker: AAA, dividend: 0.1}
  - {ticker: aaa, dividend: 0.2}
`))
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("malformed decimal", func(t *testing.T) {
		_, err := Parse([]byte(`
etfs:
  - {ticker: AAA, dividend: abc}
`))
		assert.Error(t, err)
	})
}
