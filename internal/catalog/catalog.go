// Package catalog holds the hand-maintained WeeklyPay distribution table.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"weeklypay_go/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed weeklypay.yaml
var defaultTable []byte

type table struct {
	Schedule domain.PayoutSchedule `yaml:"schedule"`
	ETFs     []domain.ETF          `yaml:"etfs"`
}

// Catalog is an immutable, ticker-indexed view of one week's distributions.
type Catalog struct {
	schedule domain.PayoutSchedule
	byTicker map[string]domain.ETF
	symbols  []string
}

// Load decodes the embedded table.
func Load() (*Catalog, error) {
	return Parse(defaultTable)
}

// Parse decodes a catalog table from YAML.
func Parse(data []byte) (*Catalog, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(t.ETFs) == 0 {
		return nil, fmt.Errorf("catalog has no entries")
	}

	c := &Catalog{
		schedule: t.Schedule,
		byTicker: make(map[string]domain.ETF, len(t.ETFs)),
		symbols:  make([]string, 0, len(t.ETFs)),
	}
	for _, etf := range t.ETFs {
		etf.Ticker = strings.ToUpper(strings.TrimSpace(etf.Ticker))
		if etf.Ticker == "" {
			return nil, fmt.Errorf("catalog entry without ticker")
		}
		if _, dup := c.byTicker[etf.Ticker]; dup {
			return nil, fmt.Errorf("duplicate catalog ticker %s", etf.Ticker)
		}
		c.byTicker[etf.Ticker] = etf
		c.symbols = append(c.symbols, etf.Ticker)
	}
	sort.Strings(c.symbols)

	return c, nil
}

// Symbols returns all tickers sorted alphabetically.
func (c *Catalog) Symbols() []string {
	out := make([]string, len(c.symbols))
	copy(out, c.symbols)
	return out
}

// Len returns the number of funds.
func (c *Catalog) Len() int {
	return len(c.symbols)
}

// Lookup returns the fund for ticker (case-insensitive).
func (c *Catalog) Lookup(ticker string) (domain.ETF, error) {
	etf, ok := c.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return domain.ETF{}, fmt.Errorf("%w: %s", domain.ErrUnknownTicker, ticker)
	}
	return etf, nil
}

// All returns every fund ordered by ticker.
func (c *Catalog) All() []domain.ETF {
	out := make([]domain.ETF, 0, len(c.symbols))
	for _, s := range c.symbols {
		out = append(out, c.byTicker[s])
	}
	return out
}

// Top returns the fund with the highest distribution rate.
// Ties resolve to the alphabetically first ticker.
func (c *Catalog) Top() domain.ETF {
	var best domain.ETF
	for i, s := range c.symbols {
		etf := c.byTicker[s]
		if i == 0 || etf.Rate.GreaterThan(best.Rate) {
			best = etf
		}
	}
	return best
}

// Schedule returns the payout dates for the week.
func (c *Catalog) Schedule() domain.PayoutSchedule {
	return c.schedule
}
