package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CalculateMargin returns the margin percent (selling price retained after
// subtracting cost) formatted to 1 decimal, or nil when either input is zero —
// no meaningful margin exists with a zero base. Negative margins (selling
// below cost) are valid results; callers decide how to flag them.
func CalculateMargin(sellingPrice, costPrice decimal.Decimal) *string {
	if sellingPrice.IsZero() || costPrice.IsZero() {
		return nil
	}
	m := sellingPrice.Sub(costPrice).Div(sellingPrice).Mul(hundred).StringFixed(1)
	return &m
}

// PriceDiff is the absolute and relative difference between a proposed and a
// current price. Diff ≥ 0 classifies as "up" for display.
type PriceDiff struct {
	Diff        decimal.Decimal `json:"diff"`
	DiffPercent string          `json:"diff_percent"`
}

// GetPriceDiff compares a new price against the current one. Returns nil when
// either is zero.
func GetPriceDiff(newPrice, currentPrice decimal.Decimal) *PriceDiff {
	if newPrice.IsZero() || currentPrice.IsZero() {
		return nil
	}
	diff := newPrice.Sub(currentPrice)
	return &PriceDiff{
		Diff:        diff,
		DiffPercent: diff.Div(currentPrice).Mul(hundred).StringFixed(1),
	}
}
