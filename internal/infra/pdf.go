package infra

// pdf.go — Price history summary PDF generation using go-pdf/fpdf.
// Produced by the async export worker alongside the CSV. Layout:
//   - Price list name and currency header
//   - Generation timestamp and record count
//   - Change table (product, type, old price, new price, changed at/by)
//
// The output file is saved to storagePath/pricelist_history_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"steelpricing/internal/model"
	"steelpricing/internal/pricing"

	"github.com/go-pdf/fpdf"
)

// GenerateHistoryPDF renders the change log of a price list as a PDF summary.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the absolute path to the generated file.
func GenerateHistoryPDF(list *model.PriceList, records []pricing.ChangeRecord, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("pricelist_history_%s.pdf", list.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, fmt.Sprintf("Price change history — %s (%s)", list.Name, list.Currency), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("%d records", len(records)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Table header ──────────────────────────────────────────────────────────
	colProduct := contentW * 0.30
	colType := contentW * 0.10
	colOld := contentW * 0.13
	colNew := contentW * 0.13
	colAt := contentW * 0.20
	colBy := contentW * 0.14

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(colProduct, 6, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colType, 6, "Change", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colOld, 6, "Old price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colNew, 6, "New price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colAt, 6, "Changed at (UTC)", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colBy, 6, "By", "B", 1, "L", false, 0, "")

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for _, r := range records {
		name := r.ProductName
		if len(name) > 40 {
			name = name[:39] + "…"
		}
		oldPrice := "-"
		if r.OldSellingPrice != nil {
			oldPrice = r.OldSellingPrice.StringFixed(2)
		}
		newPrice := "-"
		if r.NewSellingPrice != nil {
			newPrice = r.NewSellingPrice.StringFixed(2)
		}
		changedBy := r.ChangedBy
		if changedBy == "" {
			changedBy = "System"
		}

		pdf.CellFormat(colProduct, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(colType, 5, pricing.Classify(r.ChangeType).Label, "", 0, "C", false, 0, "")
		pdf.CellFormat(colOld, 5, oldPrice, "", 0, "R", false, 0, "")
		pdf.CellFormat(colNew, 5, newPrice, "", 0, "R", false, 0, "")
		pdf.CellFormat(colAt, 5, r.ChangedAt.UTC().Format("2006-01-02 15:04:05"), "", 0, "L", false, 0, "")
		pdf.CellFormat(colBy, 5, changedBy, "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
