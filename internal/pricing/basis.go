// Package pricing implements the price-list rule engine: pricing-basis rules,
// bulk percentage adjustments, margin/variance calculation, and price-history
// classification and export. Everything here is pure — no I/O, no persistence —
// so the package can be lifted out as a standalone library.
package pricing

import "strings"

// Basis is the unit of measure a selling price is quoted against.
type Basis string

const (
	PerPcs   Basis = "PER_PCS"
	PerKg    Basis = "PER_KG"
	PerMT    Basis = "PER_MT"
	PerMeter Basis = "PER_METER"
	PerLot   Basis = "PER_LOT"
)

// AllBases lists every basis in canonical display order.
var AllBases = []Basis{PerPcs, PerKg, PerMT, PerMeter, PerLot}

// allowedByCategory maps a product category to the bases that may be
// persisted for it. Categories are stored uppercase.
var allowedByCategory = map[string][]Basis{
	"COIL":  {PerMT},
	"SHEET": {PerPcs},
	"PLATE": {PerMT, PerPcs},
	"PIPE":  {PerPcs, PerMeter},
	"TUBE":  {PerPcs, PerMeter},
	"BAR":   {PerKg, PerPcs},
	"FLAT":  {PerKg, PerPcs},
}

// defaultByCategory must pick an element of allowedByCategory for the same key.
var defaultByCategory = map[string]Basis{
	"COIL":  PerMT,
	"SHEET": PerPcs,
	"PLATE": PerMT,
	"PIPE":  PerPcs,
	"TUBE":  PerPcs,
	"BAR":   PerKg,
	"FLAT":  PerKg,
}

var basisLabels = map[Basis]string{
	PerPcs:   "Per Piece",
	PerKg:    "Per Kg",
	PerMT:    "Per Metric Ton",
	PerMeter: "Per Meter",
	PerLot:   "Per Lot",
}

// AllowedBases returns the bases allowed for a category. Lookup is
// case-insensitive; an empty or unknown category yields every basis —
// UI code relies on always getting a usable list back, so this never
// tightens to an error.
func AllowedBases(category string) []Basis {
	bases, ok := allowedByCategory[strings.ToUpper(strings.TrimSpace(category))]
	if !ok {
		bases = AllBases
	}
	out := make([]Basis, len(bases))
	copy(out, bases)
	return out
}

// DefaultBasis returns the default basis for a category, falling back to
// PerMT for empty or unknown categories.
func DefaultBasis(category string) Basis {
	if b, ok := defaultByCategory[strings.ToUpper(strings.TrimSpace(category))]; ok {
		return b
	}
	return PerMT
}

// RequiresWeight reports whether the basis prices per unit mass and therefore
// needs a recorded unit weight to convert to a line amount.
func RequiresWeight(b Basis) bool {
	return b == PerMT || b == PerKg
}

// BasisLabel returns the display label for a basis. Unknown bases pass
// through unchanged.
func BasisLabel(b Basis) string {
	if label, ok := basisLabels[b]; ok {
		return label
	}
	return string(b)
}
