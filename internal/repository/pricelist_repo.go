package repository

import (
	"context"

	"steelpricing/internal/dto"
	"steelpricing/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriceListRepository defines the data access contract for price lists and
// their items. Tx variants run inside a caller-owned transaction — the
// service opens one whenever item changes and history rows must land together.
type PriceListRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.PriceList, error)
	List(ctx context.Context, filter dto.PriceListFilter) ([]model.PriceList, int64, error)
	// FindDefault returns the default list for a currency, items included.
	FindDefault(ctx context.Context, currency string) (*model.PriceList, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error

	CreateTx(tx *gorm.DB, pl *model.PriceList) error
	UpdateHeaderTx(tx *gorm.DB, pl *model.PriceList) error
	// ReplaceItemsTx deletes the list's items and inserts the given ones
	// with positions assigned from slice order.
	ReplaceItemsTx(tx *gorm.DB, listID uuid.UUID, items []model.PriceListItem) error
	// ClearDefaultTx drops the default flag from every other list of the
	// same currency, keeping the at-most-one-default invariant.
	ClearDefaultTx(tx *gorm.DB, currency string, exceptID uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type priceListRepo struct{ db *gorm.DB }

func NewPriceListRepository(db *gorm.DB) PriceListRepository { return &priceListRepo{db: db} }

func (r *priceListRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PriceList, error) {
	var pl model.PriceList
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&pl, "id = ?", id).Error
	return &pl, err
}

func (r *priceListRepo) List(ctx context.Context, filter dto.PriceListFilter) ([]model.PriceList, int64, error) {
	var lists []model.PriceList
	var total int64

	q := r.db.WithContext(ctx).Model(&model.PriceList{})

	switch filter.Active {
	case "false":
		q = q.Where("is_active = false")
	case "all":
	default:
		q = q.Where("is_active = true")
	}
	if filter.Currency != "" {
		q = q.Where("currency = ?", filter.Currency)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	// Items deliberately excluded from the list view — the contract only
	// includes them on single-list fetches.
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Select("id", "price_list_id") }).
		Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&lists).Error
	return lists, total, err
}

func (r *priceListRepo) FindDefault(ctx context.Context, currency string) (*model.PriceList, error) {
	var pl model.PriceList
	q := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("is_default = true AND is_active = true")
	if currency != "" {
		q = q.Where("currency = ?", currency)
	}
	err := q.First(&pl).Error
	return &pl, err
}

func (r *priceListRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.PriceList{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "is_default": false}).Error
}

func (r *priceListRepo) CreateTx(tx *gorm.DB, pl *model.PriceList) error {
	for i := range pl.Items {
		pl.Items[i].Position = i
	}
	return tx.Create(pl).Error
}

func (r *priceListRepo) UpdateHeaderTx(tx *gorm.DB, pl *model.PriceList) error {
	return tx.Model(&model.PriceList{}).Where("id = ?", pl.ID).Updates(map[string]interface{}{
		"name":           pl.Name,
		"description":    pl.Description,
		"currency":       pl.Currency,
		"is_active":      pl.IsActive,
		"is_default":     pl.IsDefault,
		"effective_from": pl.EffectiveFrom,
		"effective_to":   pl.EffectiveTo,
		"metadata":       pl.Metadata,
	}).Error
}

func (r *priceListRepo) ReplaceItemsTx(tx *gorm.DB, listID uuid.UUID, items []model.PriceListItem) error {
	if err := tx.Where("price_list_id = ?", listID).Delete(&model.PriceListItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].PriceListID = listID
		items[i].Position = i
	}
	return tx.Create(&items).Error
}

func (r *priceListRepo) ClearDefaultTx(tx *gorm.DB, currency string, exceptID uuid.UUID) error {
	return tx.Model(&model.PriceList{}).
		Where("currency = ? AND is_default = true AND id <> ?", currency, exceptID).
		Update("is_default", false).Error
}

func (r *priceListRepo) DB() *gorm.DB { return r.db }
