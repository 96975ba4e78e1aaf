package service

import (
	"context"
	"errors"
	"time"

	"steelpricing/internal/dto"
	"steelpricing/internal/model"
	"steelpricing/internal/pricing"
	"steelpricing/internal/repository"
	"steelpricing/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryService queries the append-only price-change log and produces CSV
// exports. The product-name filter runs only within the returned page —
// after server-side filters and pagination — which mirrors the UI's scope
// and is a documented limitation, not something to silently widen.
type HistoryService interface {
	List(ctx context.Context, listID uuid.UUID, filter dto.HistoryFilter) (*dto.HistoryListResponse, error)
	// ExportCSV renders the full history of a list synchronously.
	ExportCSV(ctx context.Context, listID uuid.UUID) (fileName string, data []byte, err error)
	// EnqueueExport queues an async export job; the worker writes the file
	// to export storage and optionally emails it.
	EnqueueExport(ctx context.Context, listID uuid.UUID, toEmail string) (*dto.ExportJobResponse, error)
}

type historyService struct {
	repo       repository.HistoryRepository
	listRepo   repository.PriceListRepository
	dispatcher *worker.Dispatcher
}

func NewHistoryService(repo repository.HistoryRepository, listRepo repository.PriceListRepository, dispatcher *worker.Dispatcher) HistoryService {
	return &historyService{repo: repo, listRepo: listRepo, dispatcher: dispatcher}
}

func (s *historyService) List(ctx context.Context, listID uuid.UUID, filter dto.HistoryFilter) (*dto.HistoryListResponse, error) {
	rows, total, err := s.repo.ListByPriceList(ctx, listID, filter)
	if err != nil {
		return nil, err
	}

	kept := pricing.FilterByProductName(recordsToPricing(rows), filter.Product)

	items := make([]dto.PriceChangeItem, 0, len(kept))
	for _, r := range kept {
		badge := pricing.Classify(r.ChangeType)
		items = append(items, dto.PriceChangeItem{
			ID:              r.ID.String(),
			ProductID:       r.ProductID.String(),
			ProductName:     r.ProductName,
			ChangeType:      string(r.ChangeType),
			Label:           badge.Label,
			ColorClass:      badge.ColorClass,
			OldSellingPrice: r.OldSellingPrice,
			NewSellingPrice: r.NewSellingPrice,
			ChangePercent:   pricing.PriceChangeIndicator(r.OldSellingPrice, r.NewSellingPrice),
			ChangedBy:       r.ChangedBy,
			ChangedAt:       r.ChangedAt.UTC().Format(time.RFC3339),
		})
	}

	// Total reflects the server-side result set; the name filter only
	// narrows the visible page.
	return &dto.HistoryListResponse{History: items, Total: total}, nil
}

func (s *historyService) ExportCSV(ctx context.Context, listID uuid.UUID) (string, []byte, error) {
	if _, err := s.listRepo.FindByID(ctx, listID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrPriceListNotFound
		}
		return "", nil, err
	}

	rows, err := s.repo.ListAllByPriceList(ctx, listID)
	if err != nil {
		return "", nil, err
	}

	data := pricing.ExportCSV(recordsToPricing(rows))
	return pricing.ExportFileName(listID, time.Now()), data, nil
}

func (s *historyService) EnqueueExport(ctx context.Context, listID uuid.UUID, toEmail string) (*dto.ExportJobResponse, error) {
	if _, err := s.listRepo.FindByID(ctx, listID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPriceListNotFound
		}
		return nil, err
	}
	if s.dispatcher == nil {
		return nil, errors.New("export queue unavailable")
	}

	fileName := pricing.ExportFileName(listID, time.Now())
	err := s.dispatcher.EnqueueHistoryExport(ctx, worker.HistoryExportPayload{
		PriceListID: listID.String(),
		ToEmail:     toEmail,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ExportJobResponse{FileName: fileName, Queued: true}, nil
}

func recordsToPricing(rows []model.PriceChangeRecord) []pricing.ChangeRecord {
	out := make([]pricing.ChangeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, pricing.ChangeRecord{
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
	return out
}
