package worker

// export_worker.go
// Processes price-history export jobs from QueueHistoryExport.
// Renders the full change log of a price list to CSV and a PDF summary,
// stores both on disk and enqueues an email with the CSV attached.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"steelpricing/internal/infra"
	"steelpricing/internal/pricing"
	"steelpricing/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// HistoryExportPayload is the job envelope sent to QueueHistoryExport.
type HistoryExportPayload struct {
	PriceListID string `json:"price_list_id"`
	ToEmail     string `json:"to_email"`
}

// ExportWorker processes history export jobs from QueueHistoryExport.
// It reads the complete change log from the DB, writes the CSV and PDF
// artifacts to the export storage path, and hands off to the email queue.
type ExportWorker struct {
	priceListRepo repository.PriceListRepository
	historyRepo   repository.HistoryRepository
	dispatcher    *Dispatcher
	storagePath   string
}

// NewExportWorker wires all dependencies for the export worker.
func NewExportWorker(
	priceListRepo repository.PriceListRepository,
	historyRepo repository.HistoryRepository,
	dispatcher *Dispatcher,
	storagePath string,
) *ExportWorker {
	return &ExportWorker{
		priceListRepo: priceListRepo,
		historyRepo:   historyRepo,
		dispatcher:    dispatcher,
		storagePath:   storagePath,
	}
}

// Process handles a single export job:
//  1. Parse HistoryExportPayload from the job envelope
//  2. Fetch the price list and its full change log from DB
//  3. Write the CSV export to the storage path
//  4. Generate a PDF summary alongside it
//  5. Enqueue an email job with the CSV attached
func (w *ExportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload HistoryExportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("export_worker: invalid payload: %w", err)
	}

	listID, err := uuid.Parse(payload.PriceListID)
	if err != nil {
		return fmt.Errorf("export_worker: invalid price_list_id %q", payload.PriceListID)
	}

	list, err := w.priceListRepo.FindByID(ctx, listID)
	if err != nil {
		return fmt.Errorf("export_worker: price list not found: %w", err)
	}

	rows, err := w.historyRepo.ListAllByPriceList(ctx, listID)
	if err != nil {
		return fmt.Errorf("export_worker: failed to load history: %w", err)
	}

	records := make([]pricing.ChangeRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, pricing.ChangeRecord{
			ID:              r.ID,
			ProductID:       r.ProductID,
			ProductName:     r.ProductName,
			ChangeType:      pricing.ChangeType(r.ChangeType),
			OldSellingPrice: r.OldSellingPrice,
			NewSellingPrice: r.NewSellingPrice,
			ChangedAt:       r.ChangedAt,
			ChangedBy:       r.ChangedBy,
		})
	}

	if err := os.MkdirAll(w.storagePath, 0o755); err != nil {
		return fmt.Errorf("export_worker: storage path unavailable: %w", err)
	}

	csvPath := filepath.Join(w.storagePath, pricing.ExportFileName(listID, time.Now()))
	if err := os.WriteFile(csvPath, pricing.ExportCSV(records), 0o644); err != nil {
		return fmt.Errorf("export_worker: failed to write CSV: %w", err)
	}
	log.Info().Str("csv", csvPath).Str("price_list_id", payload.PriceListID).Msg("export_worker: CSV written")

	pdfPath, pdfErr := infra.GenerateHistoryPDF(list, records, w.storagePath)
	if pdfErr != nil {
		// PDF is a nice-to-have summary; the CSV is the deliverable
		log.Warn().Err(pdfErr).Str("price_list_id", payload.PriceListID).Msg("export_worker: PDF generation failed")
	} else {
		log.Info().Str("pdf", pdfPath).Str("price_list_id", payload.PriceListID).Msg("export_worker: PDF generated")
	}

	if payload.ToEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail:        payload.ToEmail,
			Subject:        fmt.Sprintf("Price history export — %s", list.Name),
			Body:           fmt.Sprintf("Attached is the price change history for %q (%d records).", list.Name, len(records)),
			AttachmentPath: csvPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", payload.ToEmail).Msg("export_worker: failed to enqueue email")
		} else {
			log.Info().Str("email", payload.ToEmail).Msg("export_worker: email job enqueued")
		}
	}
	return nil
}
