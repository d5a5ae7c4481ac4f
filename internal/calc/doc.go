// Package calc implements the dividend calculators shown on the dashboard.
//
// All amounts are decimal. USD inputs are converted with the FX rate of the
// current quote snapshot; KRW results are not rounded, callers format them.
package calc

import (
	"fmt"

	"weeklypay_go/internal/domain"

	"github.com/shopspring/decimal"
)

// MaxSnowballWeeks bounds the length of a reinvestment series.
const MaxSnowballWeeks = 52 * 20

var (
	one           = decimal.NewFromInt(1)
	weeksPerMonth = decimal.RequireFromString("4.3")
)

func nonNegative(name string, v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative, got %s", domain.ErrInvalidInput, name, v)
	}
	return nil
}

func nonNegativeInt(name string, v int64) error {
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %d", domain.ErrInvalidInput, name, v)
	}
	return nil
}

func validTaxRate(tax decimal.Decimal) error {
	if tax.IsNegative() || tax.GreaterThanOrEqual(one) {
		return fmt.Errorf("%w: tax rate must be in [0, 1), got %s", domain.ErrInvalidInput, tax)
	}
	return nil
}
