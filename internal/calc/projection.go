package calc

import (
	"errors"
	"fmt"

	"weeklypay_go/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	cut10 = decimal.RequireFromString("0.9")
	cut30 = decimal.RequireFromString("0.7")
	cut50 = decimal.RequireFromString("0.5")
)

// StressResult is the weekly net payout under dividend cut scenarios.
type StressResult struct {
	Base  decimal.Decimal `json:"base"`
	Cut10 decimal.Decimal `json:"cut_10"`
	Cut30 decimal.Decimal `json:"cut_30"`
	Cut50 decimal.Decimal `json:"cut_50"`
}

// StressTest applies 10%, 30% and 50% cuts to shares x netPerShare.
func StressTest(shares int64, netPerShare decimal.Decimal) (StressResult, error) {
	if err := errors.Join(nonNegativeInt("shares", shares), nonNegative("net per share", netPerShare)); err != nil {
		return StressResult{}, err
	}

	base := decimal.NewFromInt(shares).Mul(netPerShare)
	return StressResult{
		Base:  base,
		Cut10: base.Mul(cut10),
		Cut30: base.Mul(cut30),
		Cut50: base.Mul(cut50),
	}, nil
}

// IncomeTargetResult is the position needed for a weekly net income.
type IncomeTargetResult struct {
	Shares     int64           `json:"shares"`
	CapitalKRW decimal.Decimal `json:"capital_krw"`
}

// IncomeTarget returns the shares (rounded up) and KRW capital needed to
// receive weeklyTarget KRW after tax.
func IncomeTarget(weeklyTarget, netPerShare, price, fx decimal.Decimal) (IncomeTargetResult, error) {
	if err := errors.Join(
		nonNegative("weekly target", weeklyTarget),
		nonNegative("net per share", netPerShare),
		nonNegative("price", price),
		nonNegative("fx rate", fx),
	); err != nil {
		return IncomeTargetResult{}, err
	}
	if !netPerShare.IsPositive() {
		return IncomeTargetResult{CapitalKRW: decimal.Zero}, nil
	}

	shares := weeklyTarget.Div(netPerShare).Ceil()
	return IncomeTargetResult{
		Shares:     shares.IntPart(),
		CapitalKRW: shares.Mul(price).Mul(fx),
	}, nil
}

// SnowballResult describes reinvesting one week's payout and the long-run
// value of reinvesting every payout.
type SnowballResult struct {
	PayoutKRW        decimal.Decimal   `json:"payout_krw"`
	AddedShares      int64             `json:"added_shares"`
	LeftoverKRW      decimal.Decimal   `json:"leftover_krw"`
	NextWeekIncrease decimal.Decimal   `json:"next_week_increase"`
	Series           []decimal.Decimal `json:"series"`
}

// Snowball reinvests the net payout at the current price. Series holds the
// position value in KRW at the end of each of the next weeks, assuming
// fractional reinvestment and a constant price and dividend.
func Snowball(shares int64, netPerShare, price, fx decimal.Decimal, weeks int) (SnowballResult, error) {
	if err := errors.Join(
		nonNegativeInt("shares", shares),
		nonNegative("net per share", netPerShare),
		nonNegative("price", price),
		nonNegative("fx rate", fx),
	); err != nil {
		return SnowballResult{}, err
	}
	if weeks < 0 || weeks > MaxSnowballWeeks {
		return SnowballResult{}, fmt.Errorf("%w: weeks must be in [0, %d], got %d", domain.ErrInvalidInput, MaxSnowballWeeks, weeks)
	}

	payout := decimal.NewFromInt(shares).Mul(netPerShare)
	res := SnowballResult{
		PayoutKRW:        payout,
		LeftoverKRW:      decimal.Zero,
		NextWeekIncrease: decimal.Zero,
		Series:           []decimal.Decimal{},
	}

	unitKRW := price.Mul(fx)
	if !unitKRW.IsPositive() {
		return res, nil
	}

	added := payout.Div(unitKRW).Floor()
	res.AddedShares = added.IntPart()
	res.LeftoverKRW = payout.Sub(added.Mul(unitKRW))
	res.NextWeekIncrease = added.Mul(netPerShare)

	if !netPerShare.IsPositive() {
		return res, nil
	}

	res.Series = make([]decimal.Decimal, 0, weeks)
	value := decimal.NewFromInt(shares).Mul(unitKRW)
	for i := 0; i < weeks; i++ {
		value = value.Add(value.Div(unitKRW).Mul(netPerShare))
		res.Series = append(res.Series, value)
	}
	return res, nil
}
