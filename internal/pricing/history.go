package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChangeType classifies one row of the append-only price-change log.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeRecord is the rule engine's view of one price-change log row.
// Old price is nil on INSERT, new price is nil on DELETE.
type ChangeRecord struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	ChangeType      ChangeType
	OldSellingPrice *decimal.Decimal
	NewSellingPrice *decimal.Decimal
	ChangedAt       time.Time
	ChangedBy       string
}

// ChangeBadge is the display classification of a change type.
type ChangeBadge struct {
	Icon       string `json:"icon"`
	Label      string `json:"label"`
	ColorClass string `json:"color_class"`
}

// Classify maps a change type to its display badge. Unrecognized types pass
// their raw value through with a neutral color — this never errors.
func Classify(ct ChangeType) ChangeBadge {
	switch ct {
	case ChangeInsert:
		return ChangeBadge{Icon: "plus", Label: "Added", ColorClass: "green"}
	case ChangeDelete:
		return ChangeBadge{Icon: "minus", Label: "Removed", ColorClass: "red"}
	case ChangeUpdate:
		return ChangeBadge{Icon: "edit", Label: "Modified", ColorClass: "blue"}
	default:
		return ChangeBadge{Icon: "dot", Label: string(ct), ColorClass: "gray"}
	}
}

// PriceChangeIndicator returns the percent change between old and new price
// rounded to 1 decimal, or nil when either side is absent or zero: a missing
// old price means the item is new, a missing new price means it was removed —
// no percent is meaningful in either case.
func PriceChangeIndicator(oldPrice, newPrice *decimal.Decimal) *decimal.Decimal {
	if oldPrice == nil || newPrice == nil || oldPrice.IsZero() || newPrice.IsZero() {
		return nil
	}
	pct := newPrice.Sub(*oldPrice).Div(*oldPrice).Mul(hundred).Round(1)
	return &pct
}

// FilterByProductName keeps records whose product name contains the query,
// case-insensitive. Callers apply it to a single server-returned page, after
// server-side filters and pagination — matches outside the loaded page are
// not found. That page-local scope is a documented limitation of the source
// system and is preserved here.
func FilterByProductName(records []ChangeRecord, query string) []ChangeRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	out := make([]ChangeRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.ProductName), q) {
			out = append(out, r)
		}
	}
	return out
}

// csvHeader is fixed; changing it breaks downstream spreadsheet imports.
var csvHeader = []string{"Date", "Product", "Change Type", "Old Price", "New Price", "Changed By"}

// ExportCSV renders change records as CSV. Every field is individually quoted
// and dates use a fixed UTC format, so the output is byte-reproducible for a
// given input. Absent prices render as empty quoted fields; an absent actor
// defaults to "System".
//
// encoding/csv is deliberately not used: it only quotes fields that need it,
// and the export format requires every field quoted.
func ExportCSV(records []ChangeRecord) []byte {
	var b strings.Builder
	writeCSVRow(&b, csvHeader)
	for _, r := range records {
		oldPrice := ""
		if r.OldSellingPrice != nil {
			oldPrice = r.OldSellingPrice.StringFixed(2)
		}
		newPrice := ""
		if r.NewSellingPrice != nil {
			newPrice = r.NewSellingPrice.StringFixed(2)
		}
		changedBy := r.ChangedBy
		if changedBy == "" {
			changedBy = "System"
		}
		writeCSVRow(&b, []string{
			r.ChangedAt.UTC().Format("2006-01-02 15:04:05"),
			r.ProductName,
			string(r.ChangeType),
			oldPrice,
			newPrice,
			changedBy,
		})
	}
	return []byte(b.String())
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}

// ExportFileName builds the canonical download name for a history export.
func ExportFileName(priceListID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("pricelist_history_%s_%s.csv", priceListID, at.UTC().Format("2006-01-02"))
}
