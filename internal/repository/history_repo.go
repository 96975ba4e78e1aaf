package repository

import (
	"context"
	"time"

	"steelpricing/internal/dto"
	"steelpricing/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRepository writes and reads the append-only price-change log.
// There is deliberately no update or delete — the log is immutable.
type HistoryRepository interface {
	CreateTx(tx *gorm.DB, records []model.PriceChangeRecord) error
	// ListByPriceList applies changeType and date filters server-side,
	// newest first, with limit/offset pagination.
	ListByPriceList(ctx context.Context, listID uuid.UUID, filter dto.HistoryFilter) ([]model.PriceChangeRecord, int64, error)
	// ListAllByPriceList returns the full unpaginated log for exports.
	ListAllByPriceList(ctx context.Context, listID uuid.UUID) ([]model.PriceChangeRecord, error)
}

type historyRepo struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) HistoryRepository { return &historyRepo{db: db} }

func (r *historyRepo) CreateTx(tx *gorm.DB, records []model.PriceChangeRecord) error {
	if len(records) == 0 {
		return nil
	}
	return tx.Create(&records).Error
}

func (r *historyRepo) ListByPriceList(ctx context.Context, listID uuid.UUID, filter dto.HistoryFilter) ([]model.PriceChangeRecord, int64, error) {
	limit := filter.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&model.PriceChangeRecord{}).Where("price_list_id = ?", listID)
	if filter.ChangeType != "" {
		q = q.Where("change_type = ?", filter.ChangeType)
	}
	if filter.FromDate != "" {
		if from, err := time.Parse("2006-01-02", filter.FromDate); err == nil {
			q = q.Where("changed_at >= ?", from)
		}
	}
	if filter.ToDate != "" {
		if to, err := time.Parse("2006-01-02", filter.ToDate); err == nil {
			// inclusive end of day
			q = q.Where("changed_at < ?", to.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.PriceChangeRecord
	err := q.Order("changed_at DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, err
}

func (r *historyRepo) ListAllByPriceList(ctx context.Context, listID uuid.UUID) ([]model.PriceChangeRecord, error) {
	var rows []model.PriceChangeRecord
	err := r.db.WithContext(ctx).
		Where("price_list_id = ?", listID).
		Order("changed_at DESC").
		Find(&rows).Error
	return rows, err
}
