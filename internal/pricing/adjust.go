package pricing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one product→price override inside a price list. The persistence
// layer converts to and from its own shape; the rule engine only ever sees
// this view.
type Item struct {
	ProductID    uuid.UUID
	ProductName  string
	SellingPrice decimal.Decimal
	MinQuantity  int
}

// AdjustmentType selects the direction of a bulk adjustment.
type AdjustmentType string

const (
	AdjustIncrease AdjustmentType = "increase"
	AdjustDecrease AdjustmentType = "decrease"
)

// Adjustment is a percentage change applied to every item of a price list.
type Adjustment struct {
	Type       AdjustmentType
	Percentage decimal.Decimal
}

// Multiplier returns 1 ± percentage/100 depending on the adjustment type.
func (a Adjustment) Multiplier() decimal.Decimal {
	frac := a.Percentage.Div(decimal.NewFromInt(100))
	if a.Type == AdjustDecrease {
		return decimal.NewFromInt(1).Sub(frac)
	}
	return decimal.NewFromInt(1).Add(frac)
}

// ApplyBulkAdjustment returns a new slice with every selling price multiplied
// by the adjustment and rounded to 2 decimals (half away from zero — standard
// currency rounding, pinned by tests). The input is never mutated; length and
// order are preserved. A 0% adjustment yields the original values.
func ApplyBulkAdjustment(items []Item, adj Adjustment) []Item {
	mult := adj.Multiplier()
	out := make([]Item, len(items))
	for i, it := range items {
		it.SellingPrice = it.SellingPrice.Mul(mult).Round(2)
		out[i] = it
	}
	return out
}

// ParseRawPrice turns free-form user input into a price with
// parse-longest-numeric-prefix-or-zero semantics: "120" → 120, "12.5kg" →
// 12.5, garbage → 0. It never fails; validation of business ranges happens
// at the edge.
func ParseRawPrice(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	end := 0
	seenDigit := false
	seenDot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
			end = i + 1
		case (r == '-' || r == '+') && i == 0:
			end = i + 1
		default:
			goto done
		}
	}
done:
	if !seenDigit {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimRight(s[:end], "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// UpsertItemPrice replaces the selling price of the item for productID, or
// appends a new item (MinQuantity 1) when none exists. Existing items keep
// their position; new items go to the end. The input slice is not mutated.
func UpsertItemPrice(items []Item, productID uuid.UUID, productName string, rawValue string) []Item {
	price := ParseRawPrice(rawValue)
	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ProductID == productID {
			out[i].SellingPrice = price
			return out
		}
	}
	return append(out, Item{
		ProductID:    productID,
		ProductName:  productName,
		SellingPrice: price,
		MinQuantity:  1,
	})
}

// CatalogProduct is the slice of the product record the rule engine needs
// for seeding and resets.
type CatalogProduct struct {
	ID           uuid.UUID
	Name         string
	SellingPrice decimal.Decimal
}

// ResetToDefaults builds a fresh item collection with one entry per catalog
// product at its base selling price. This is a full overwrite, not a merge.
func ResetToDefaults(catalog []CatalogProduct) []Item {
	out := make([]Item, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, Item{
			ProductID:    p.ID,
			ProductName:  p.Name,
			SellingPrice: p.SellingPrice,
			MinQuantity:  1,
		})
	}
	return out
}
