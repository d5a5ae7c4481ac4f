package calc

import (
	"errors"
	"fmt"

	"weeklypay_go/internal/domain"

	"github.com/shopspring/decimal"
)

// AveragingResult compares the position before and after an additional buy.
// Weeks are the number of weekly dividends needed to repay the average price.
type AveragingResult struct {
	NewAverage  decimal.Decimal `json:"new_average"`
	WeeksBefore decimal.Decimal `json:"weeks_before"`
	WeeksAfter  decimal.Decimal `json:"weeks_after"`
	WeeksSaved  decimal.Decimal `json:"weeks_saved"`
}

// AveragingDown buys addQty more shares at price on top of qty at avg.
func AveragingDown(avg decimal.Decimal, qty, addQty int64, price, dividend decimal.Decimal) (AveragingResult, error) {
	if err := errors.Join(
		nonNegative("average price", avg),
		nonNegativeInt("quantity", qty),
		nonNegativeInt("additional quantity", addQty),
		nonNegative("price", price),
		nonNegative("dividend", dividend),
	); err != nil {
		return AveragingResult{}, err
	}
	if qty+addQty == 0 {
		return AveragingResult{}, fmt.Errorf("%w: total quantity must be positive", domain.ErrInvalidInput)
	}

	total := avg.Mul(decimal.NewFromInt(qty)).Add(price.Mul(decimal.NewFromInt(addQty)))
	res := AveragingResult{
		NewAverage:  total.Div(decimal.NewFromInt(qty + addQty)),
		WeeksBefore: decimal.Zero,
		WeeksAfter:  decimal.Zero,
		WeeksSaved:  decimal.Zero,
	}
	if !dividend.IsPositive() {
		return res, nil
	}

	res.WeeksBefore = avg.Div(dividend)
	res.WeeksAfter = res.NewAverage.Div(dividend)
	res.WeeksSaved = res.WeeksBefore.Sub(res.WeeksAfter)
	return res, nil
}

// BreakevenResult is how long dividends take to repay the purchase price.
type BreakevenResult struct {
	Weeks  decimal.Decimal `json:"weeks"`
	Months decimal.Decimal `json:"months"`
}

// Breakeven assumes the current dividend stays constant. A month counts 4.3 weeks.
func Breakeven(avgPrice, dividend decimal.Decimal) (BreakevenResult, error) {
	if err := errors.Join(nonNegative("average price", avgPrice), nonNegative("dividend", dividend)); err != nil {
		return BreakevenResult{}, err
	}
	if !dividend.IsPositive() {
		return BreakevenResult{Weeks: decimal.Zero, Months: decimal.Zero}, nil
	}

	weeks := decimal.Max(decimal.Zero, avgPrice.Div(dividend))
	return BreakevenResult{
		Weeks:  weeks,
		Months: weeks.Div(weeksPerMonth),
	}, nil
}
